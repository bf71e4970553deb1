// Package strategy provides TransformationStrategy implementations: pure
// functions from a user element type to a prefix-free bits.BitString, the
// role the distilled spec assigns to "TransformationStrategy" as an
// external collaborator. StringStrategy and ByteSliceStrategy prepend an
// explicit length field so that no encoded value is a proper prefix of
// another's encoding, satisfying the builder's prefix-freedom requirement
// for arbitrary variable-length inputs; FixedWidthUint64 is prefix-free by
// being fixed-width, and Identity adds nothing.
package strategy

import (
	"encoding/binary"

	"github.com/beldenge/sux4j-go/bits"
)

// Strategy maps a user element of type E to a prefix-free BitString.
type Strategy[E any] interface {
	ToBitString(e E) bits.BitString
}

// FixedWidthUint64 encodes a uint64 as exactly 64 bits. Fixed-width
// encodings of the same width are prefix-free automatically, since no two
// distinct same-length strings can be a prefix of one another.
type FixedWidthUint64 struct{}

func (FixedWidthUint64) ToBitString(e uint64) bits.BitString {
	return bits.NewFromUint64(e)
}

// StringStrategy encodes a Go string as a fixed 32-bit big-endian byte
// count followed by the string's raw bytes. Byte strings alone are not
// prefix-free ("ab" is a prefix of "abc"), but prefixing with a fixed-width
// length field is: two encodings of different length diverge inside the
// length field itself, before either one's data bits are reached, and two
// encodings of equal length cannot be in a proper-prefix relation at all.
type StringStrategy struct{}

func (StringStrategy) ToBitString(s string) bits.BitString {
	return lengthPrefixed([]byte(s))
}

// ByteSliceStrategy is StringStrategy's []byte counterpart.
type ByteSliceStrategy struct{}

func (ByteSliceStrategy) ToBitString(b []byte) bits.BitString {
	return lengthPrefixed(b)
}

func lengthPrefixed(data []byte) bits.BitString {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
	length := bits.NewBitStringFormDataAndSize(hdr[:], 32)
	body := bits.NewBitStringFormDataAndSize(append([]byte(nil), data...), uint32(len(data)*8))
	return length.Append(body)
}

// Identity passes a BitString straight through; useful when the caller has
// already arranged for prefix-freedom (e.g. the fixed-bit-count key sets
// used in property tests).
type Identity struct{}

func (Identity) ToBitString(v bits.BitString) bits.BitString {
	return v
}
