// Package hollowtrie implements the HollowTrieDistributor: a compacted
// binary trie reduced to its bare topology (one bit per node, BFS order)
// plus a succinct skip-length list, queried through the two MWHC behaviour
// functions behaviour.Label builds. No path bits and no delimiter strings
// are retained after construction; only the structural skeleton and the
// two static functions survive, the "hollow" in the name.
package hollowtrie

import (
	"fmt"

	"github.com/beldenge/sux4j-go/behaviour"
	"github.com/beldenge/sux4j-go/bits"
	"github.com/beldenge/sux4j-go/distributor"
	"github.com/beldenge/sux4j-go/internal/eliasfano"
	"github.com/beldenge/sux4j-go/internal/succinct"
	"github.com/beldenge/sux4j-go/internal/trie"
)

// Distributor is a constructed HollowTrieDistributor, ready for queries.
type Distributor struct {
	h          *succinct.BitVector
	cumSkip    *eliasfano.List // cumulative prefix sums of internal-node path lengths, indexed by rank
	fns        *behaviour.Functions
	size       int32
	bucketSize int
	numBuckets int64
}

// Build constructs a Distributor over an iterable of keys (sorted, distinct,
// pairwise prefix-free) with the given bucket size. keys is consumed fully
// before construction begins; wrapping it in bits.NewCheckedSortedIterator
// first gets the caller a debug-build sanity check on top of the
// authoritative ordering validation trie.Build performs.
func Build(keys bits.BitStringIterator, bucketSize int) (*Distributor, error) {
	keySlice, err := bits.Collect(bits.NewCheckedSortedIterator(keys))
	if err != nil {
		return nil, fmt.Errorf("hollowtrie: %w", err)
	}
	if len(keySlice) == 0 {
		return &Distributor{h: succinct.NewBitVector(), bucketSize: bucketSize}, nil
	}

	tr, err := trie.Build(keySlice, bucketSize)
	if err != nil {
		return nil, trie.AsInvalidInput(err)
	}

	numBuckets := int64((len(keySlice) + bucketSize - 1) / bucketSize)

	d := &Distributor{
		h:          succinct.NewBitVector(),
		bucketSize: bucketSize,
		numBuckets: numBuckets,
	}

	if tr.Root < 0 {
		return d, nil
	}

	order := tr.AssignBFSIndices()
	d.size = int32(len(order))

	var cumSums []uint64
	var running uint64
	for _, idx := range order {
		n := &tr.Nodes[idx]
		if n.IsLeaf() {
			d.h.PushBack(false)
			continue
		}
		d.h.PushBack(true)
		running += uint64(n.Path.Size())
		cumSums = append(cumSums, running)
	}
	d.cumSkip = eliasfano.Build(cumSums)

	fns, err := behaviour.Label(tr, keySlice)
	if err != nil {
		return nil, fmt.Errorf("hollowtrie: %w", err)
	}
	d.fns = fns

	return d, nil
}

// skipLength returns σ[r], the path length of the r-th internal node in
// BFS order, recovered from the cumulative prefix sums stored in cumSkip.
func (d *Distributor) skipLength(r uint64) uint32 {
	cur := d.cumSkip.Get(int(r))
	if r == 0 {
		return uint32(cur)
	}
	return uint32(cur - d.cumSkip.Get(int(r-1)))
}

// leafCount returns the number of leaves in the subtree rooted at BFS
// position p.
func (d *Distributor) leafCount(p uint64) uint64 {
	if !d.h.Bit(p) {
		return 1
	}
	r := d.h.Rank(p, true)
	left := 2*r + 1
	right := 2*r + 2
	return d.leafCount(left) + d.leafCount(right)
}

// GetLong returns key's bucket index, in [0, numBuckets). Behaviour is
// undefined for keys outside the construction set.
func (d *Distributor) GetLong(key bits.BitString) int64 {
	if d.size == 0 {
		return 0
	}

	var p uint64
	var s uint32
	var leftLeaves uint64
	length := key.Size()

	for {
		if !d.h.Bit(p) {
			// Leaf: consult F_ext on the remaining suffix.
			path := key.Sub(s, length)
			beh := d.fns.Ext.Lookup(behaviour.Fingerprint(int32(p), path))
			if distributor.Behaviour(beh) == distributor.Right {
				leftLeaves++
			}
			return int64(leftLeaves)
		}

		r := d.h.Rank(p, true)
		skip := d.skipLength(r)

		pathLen := skip
		if length-s < pathLen {
			pathLen = length - s
		}
		path := key.Sub(s, s+pathLen)
		beh := distributor.Behaviour(d.fns.Int.Lookup(behaviour.Fingerprint(int32(p), path)))

		if beh != distributor.Follow || s+skip >= length {
			if beh == distributor.Right {
				return int64(leftLeaves + d.leafCount(p))
			}
			return int64(leftLeaves)
		}

		s += skip
		bit := key.At(s)
		if bit {
			leftLeaves += d.leafCount(2*r + 1)
			p = 2*r + 2
		} else {
			p = 2*r + 1
		}
		s++
	}
}

// Size returns the number of trie nodes, a diagnostic figure.
func (d *Distributor) Size() int32 {
	return d.size
}

// NumBits returns the structure's total in-memory footprint in bits.
func (d *Distributor) NumBits() int64 {
	if d.size == 0 {
		return 0
	}
	n := d.h.NumBits() + d.cumSkip.NumBits()
	if d.fns != nil {
		n += uint64(d.fns.Int.NumBits()) + uint64(d.fns.Ext.NumBits())
	}
	return int64(n)
}

// ContainsKey always returns true: HollowTrieDistributor is not a
// membership tester.
func (d *Distributor) ContainsKey(key bits.BitString) bool {
	return true
}

var _ distributor.Distributor[bits.BitString] = (*Distributor)(nil)
