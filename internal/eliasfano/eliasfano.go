// Package eliasfano implements Elias-Fano encoding of a monotone
// non-decreasing sequence of unsigned integers, used to store the hollow
// trie's skip-length list sigma as cumulative prefix sums. The upper bits
// are a succinct bit vector queried by select (internal/succinct, backed by
// hillbig/rsdic as the thesis already uses for rank/select structures); the
// lower bits are densely packed at a fixed width, the same bit-packing
// layout as the thesis's trie/shzft delta encoding (packBits/unpackBit).
package eliasfano

import (
	"math/bits"

	"github.com/beldenge/sux4j-go/internal/succinct"
)

// List is an Elias-Fano encoded monotone non-decreasing sequence.
type List struct {
	n        int
	lowBits  int
	lower    []uint64 // n values, lowBits bits each, densely packed
	upper    *succinct.BitVector
	universe uint64
}

// Build encodes values, which must be non-decreasing, into a List.
func Build(values []uint64) *List {
	n := len(values)
	if n == 0 {
		return &List{upper: succinct.NewBitVector()}
	}

	universe := values[n-1]
	lowBits := 0
	if universe > uint64(n) {
		lowBits = bits.Len64(universe/uint64(n)) - 1
		if lowBits < 0 {
			lowBits = 0
		}
	}

	l := &List{
		n:        n,
		lowBits:  lowBits,
		lower:    packBits(lowerParts(values, lowBits), lowBits),
		upper:    succinct.NewBitVector(),
		universe: universe,
	}

	// Upper bucket of values[i] is values[i] >> lowBits; the unary/bit-vector
	// encoding of the upper sequence places a 1 at position
	// (values[i]>>lowBits) + i, a 0 elsewhere, so that select(i) recovers
	// the i-th upper bucket as select(i) - i.
	upperLen := (universe >> uint(lowBits)) + uint64(n) + 1
	pos := uint64(0)
	for i, v := range values {
		target := (v >> uint(lowBits)) + uint64(i)
		for pos < target {
			l.upper.PushBack(false)
			pos++
		}
		l.upper.PushBack(true)
		pos++
	}
	for pos < upperLen {
		l.upper.PushBack(false)
		pos++
	}

	return l
}

func lowerParts(values []uint64, lowBits int) []uint64 {
	if lowBits == 0 {
		return nil
	}
	mask := uint64(1)<<uint(lowBits) - 1
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = v & mask
	}
	return out
}

// Len returns the number of encoded values.
func (l *List) Len() int {
	return l.n
}

// Get returns the i-th value of the original sequence.
func (l *List) Get(i int) uint64 {
	if i < 0 || i >= l.n {
		return 0
	}
	upperPart := l.upper.Select(uint64(i), true) - uint64(i)
	if l.lowBits == 0 {
		return upperPart
	}
	return (upperPart << uint(l.lowBits)) | unpackBits(l.lower, i, l.lowBits)
}

// NumBits reports the structure's memory footprint.
func (l *List) NumBits() uint64 {
	return l.upper.NumBits() + uint64(len(l.lower))*64
}

// packBits packs each value in values into exactly bitWidth bits of a dense
// []uint64 word array, matching the thesis's trie/shzft delta-encoding
// layout.
func packBits(values []uint64, bitWidth int) []uint64 {
	if len(values) == 0 || bitWidth == 0 {
		return nil
	}

	totalBits := len(values) * bitWidth
	numWords := (totalBits + 63) / 64
	packed := make([]uint64, numWords)

	for i, val := range values {
		bitPos := i * bitWidth
		wordIdx := bitPos / 64
		bitOffset := uint(bitPos % 64)

		mask := uint64(1)<<uint(bitWidth) - 1
		maskedVal := val & mask

		packed[wordIdx] |= maskedVal << bitOffset

		bitsAvailableInWord := 64 - int(bitOffset)
		if bitsAvailableInWord < bitWidth {
			packed[wordIdx+1] |= maskedVal >> uint(bitsAvailableInWord)
		}
	}

	return packed
}

// unpackBits extracts the index-th bitWidth-bit value from packed.
func unpackBits(packed []uint64, index int, bitWidth int) uint64 {
	if bitWidth == 0 {
		return 0
	}

	bitPos := index * bitWidth
	wordIdx := bitPos / 64
	bitOffset := uint(bitPos % 64)

	val := packed[wordIdx] >> bitOffset

	bitsAvailableInWord := 64 - int(bitOffset)
	if bitsAvailableInWord < bitWidth {
		val |= packed[wordIdx+1] << uint(bitsAvailableInWord)
	}

	mask := uint64(1)<<uint(bitWidth) - 1
	return val & mask
}
