//go:build !mmphdebug

package errutil

// In release builds a violated invariant is undefined behaviour rather than
// an abort: the caller already decided the condition should never occur, so
// we do not pay for the check outside of debug builds.
func bugOn(format string, args ...any) {}
