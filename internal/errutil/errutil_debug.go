//go:build mmphdebug

package errutil

func bugOn(format string, args ...any) {
	Bug(format, args...)
}
