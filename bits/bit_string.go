// Package bits implements the BitVector algebra the rest of the module is
// built on: length, bit-indexed get/set, sub-vector, longest-common-prefix,
// compare, copy and append over prefix-free bit strings.
//
// The teacher's original package offered two interchangeable
// implementations (CharBitString, Uint64ArrayBitString) behind a
// BitStringImpl switch. This repository only ever needs one concrete
// representation, so the switch is gone; CharBitString is the sole
// implementation and the constructors below are thin aliases kept for the
// call sites that were already written against them.
package bits

// BitString is an immutable sequence of bits.
type BitString interface {
	Size() uint32
	IsEmpty() bool
	At(index uint32) bool
	Equal(a BitString) bool
	String() string
	GetLCPLength(other BitString) uint32
	HasPrefix(prefixToCheck BitString) bool
	Prefix(size int) BitString
	Data() []byte

	// Compare returns -1, 0 or 1 as bs is lexicographically less than,
	// equal to, or greater than other; a proper prefix is smaller than the
	// string it prefixes.
	Compare(other BitString) int

	// Sub returns the bit range [start, end).
	Sub(start, end uint32) BitString

	// Append returns the concatenation of bs and other.
	Append(other BitString) BitString

	// WithBit returns a copy of bs with bit index set to val.
	WithBit(index uint32, val bool) BitString

	// AppendBit returns bs with a single bit appended.
	AppendBit(bit bool) BitString

	// TrimTrailingZeros returns bs truncated to (and including) its
	// highest-index set bit, or the empty BitString if bs is all zeros.
	TrimTrailingZeros() BitString

	// IsAllOnes reports whether every bit in bs is set; false for an empty bs.
	IsAllOnes() bool

	// Hash returns a 64-bit digest of bs, used as the MWHC fingerprint.
	Hash() uint64

	// HashWithSeed is Hash salted with an explicit seed.
	HashWithSeed(seed uint64) uint64
}

func NewBitString(text string) BitString {
	return NewCharBitString(text)
}

func NewFromUint64(value uint64) BitString {
	return NewCharFromUint64(value)
}

func NewFromBinary(text string) BitString {
	return NewCharFromBinary(text)
}

func NewBitStringFormDataAndSize(data []byte, size uint32) BitString {
	return NewCharBitStringFromDataAndSize(data, size)
}

// Empty is the zero-length bit string.
func Empty() BitString {
	return CharBitString{}
}
