// Package succinct wraps github.com/hillbig/rsdic's RSDic as the rank/select
// bit vector used to store the hollow trie's topology bit vector H: one bit
// per BFS-visited node, 1 for internal, 0 for leaf. RSDic already implements
// the Rank9/SimpleSelect contract the spec calls for (O(1) rank, O(1)
// amortized select over a packed, succinct representation), grounded on its
// use for the same purpose in the thesis's trie/shzft package.
package succinct

import "github.com/hillbig/rsdic"

// BitVector is a succinct, rank/select-capable bit vector built by appending
// bits once, in order, then queried read-only.
type BitVector struct {
	rs *rsdic.RSDic
}

// NewBitVector returns an empty BitVector ready for PushBack.
func NewBitVector() *BitVector {
	return &BitVector{rs: rsdic.New()}
}

// PushBack appends bit to the end of the vector.
func (b *BitVector) PushBack(bit bool) {
	b.rs.PushBack(bit)
}

// Len returns the number of bits stored.
func (b *BitVector) Len() uint64 {
	return b.rs.Num()
}

// Bit returns the bit at position i.
func (b *BitVector) Bit(i uint64) bool {
	return b.rs.Bit(i)
}

// Rank returns the number of occurrences of bit in [0, i).
func (b *BitVector) Rank(i uint64, bit bool) uint64 {
	return b.rs.Rank(i, bit)
}

// Select returns the position of the (rank+1)-th occurrence of bit, i.e.
// Select(0, true) is the position of the first 1-bit.
func (b *BitVector) Select(rank uint64, bit bool) uint64 {
	return b.rs.Select(rank, bit)
}

// NumOnes returns the total number of set bits in the vector.
func (b *BitVector) NumOnes() uint64 {
	return b.rs.Rank(b.rs.Num(), true)
}

// NumBits reports the structure's memory footprint in bits.
func (b *BitVector) NumBits() uint64 {
	return uint64(b.rs.AllocSize()) * 8
}
