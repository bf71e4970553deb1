// Package mwhc wraps github.com/opencoff/go-bbhash's BBHash construction
// into a "static function": a fixed key set mapped to fixed-width integer
// values with O(1) lookup. Values are stored in a dense slot array, one
// byte per key for Function and 32 bits per key for WideFunction. It is the
// F_int / F_ext primitive the hollow-trie and relative-trie distributors
// are built on, grounded on the thesis's own bucket-level MWHC usage in
// mmph/bucket_with_approx_trie and on go-bbhash itself.
package mwhc

import (
	"fmt"

	"github.com/opencoff/go-bbhash"
)

// Gamma is the space/time tradeoff BBHash is built with: ~1.23 bits of
// overhead per key, the standard MWHC constant.
const Gamma = 1.23

// Function is a minimal perfect hash function over a fixed key set,
// augmented with a value slot per key so that Lookup behaves like a map
// with guaranteed O(1) probing and no collision chains.
type Function struct {
	bb     *bbhash.BBHash
	values []byte
}

// Build constructs a Function over keys, storing values[i] as the value
// associated with keys[i]. len(keys) must equal len(values); keys must be
// distinct 64-bit fingerprints (callers are responsible for fingerprinting
// their real keys, e.g. via bits.BitString.HashWithSeed, before calling in,
// since BBHash itself operates purely on uint64).
func Build(keys []uint64, values []byte) (*Function, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("mwhc: %d keys but %d values", len(keys), len(values))
	}
	if len(keys) == 0 {
		return &Function{}, nil
	}

	bb, err := bbhash.New(Gamma, keys)
	if err != nil {
		return nil, fmt.Errorf("mwhc: building BBHash: %w", err)
	}

	slots := make([]byte, len(keys)+1) // 1-based rank from bb.Find
	for i, k := range keys {
		rank := bb.Find(k)
		if rank == 0 {
			return nil, fmt.Errorf("mwhc: key %d not found immediately after construction", k)
		}
		slots[rank] = values[i]
	}

	return &Function{bb: bb, values: slots}, nil
}

// Lookup returns the value stored for key. Behaviour on a key outside the
// construction set is unspecified: it may return a stale value or the zero
// value, never an error, matching the MWHC contract (undefined off the key
// set, correct on it).
func (f *Function) Lookup(key uint64) byte {
	if f == nil || f.bb == nil {
		return 0
	}
	rank := f.bb.Find(key)
	if rank == 0 || int(rank) >= len(f.values) {
		return 0
	}
	return f.values[rank]
}

// Len returns the number of keys the function was built over.
func (f *Function) Len() int {
	if f == nil || len(f.values) == 0 {
		return 0
	}
	return len(f.values) - 1
}

// NumBits estimates the in-memory footprint, following the MWHC bound of
// Gamma bits per key for the BBHash rank structure plus one byte per value
// slot (values here are never wider than a byte: a 2-bit or 1-bit
// behaviour).
func (f *Function) NumBits() int {
	if f == nil {
		return 0
	}
	return int(Gamma*float64(f.Len())) + 8*len(f.values)
}

// WideFunction is Function's uint32-valued counterpart, used by the
// relative-trie variant's signature, ranker and mistake-correction tables,
// none of which fit in a single byte (a packed hash/length signature, a
// rank into the ranker-string set, and a node-string length respectively).
type WideFunction struct {
	bb     *bbhash.BBHash
	values []uint32
}

// BuildWide is Build's uint32-valued counterpart.
func BuildWide(keys []uint64, values []uint32) (*WideFunction, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("mwhc: %d keys but %d values", len(keys), len(values))
	}
	if len(keys) == 0 {
		return &WideFunction{}, nil
	}

	bb, err := bbhash.New(Gamma, keys)
	if err != nil {
		return nil, fmt.Errorf("mwhc: building BBHash: %w", err)
	}

	slots := make([]uint32, len(keys)+1)
	for i, k := range keys {
		rank := bb.Find(k)
		if rank == 0 {
			return nil, fmt.Errorf("mwhc: key %d not found immediately after construction", k)
		}
		slots[rank] = values[i]
	}

	return &WideFunction{bb: bb, values: slots}, nil
}

// Lookup returns the value stored for key; undefined off the construction
// key set, same contract as Function.Lookup.
func (f *WideFunction) Lookup(key uint64) uint32 {
	if f == nil || f.bb == nil {
		return 0
	}
	rank := f.bb.Find(key)
	if rank == 0 || int(rank) >= len(f.values) {
		return 0
	}
	return f.values[rank]
}

// Len returns the number of keys the function was built over.
func (f *WideFunction) Len() int {
	if f == nil || len(f.values) == 0 {
		return 0
	}
	return len(f.values) - 1
}

// NumBits estimates the in-memory footprint: Gamma bits per key for the
// BBHash rank structure plus 32 bits per value slot.
func (f *WideFunction) NumBits() int {
	if f == nil {
		return 0
	}
	return int(Gamma*float64(f.Len())) + 32*len(f.values)
}
