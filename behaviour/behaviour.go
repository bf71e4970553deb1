// Package behaviour implements the second construction pass: walk every
// original key through the compacted trie built by internal/trie, label
// each (node, consumed-prefix) pair it visits with a three-valued
// distributor.Behaviour, and build the two MWHC functions (F_int, F_ext)
// the hollow-trie distributor queries at lookup time. It streams the
// labelled pairs through internal/tempstream when told to bound memory,
// grounded on the same spill-and-replay discipline the thesis's bucket
// builders use during their retry loop.
package behaviour

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/beldenge/sux4j-go/bits"
	"github.com/beldenge/sux4j-go/distributor"
	"github.com/beldenge/sux4j-go/internal/hashmix"
	"github.com/beldenge/sux4j-go/internal/mwhc"
	"github.com/beldenge/sux4j-go/internal/tempstream"
	"github.com/beldenge/sux4j-go/internal/trie"
)

// Functions bundles F_int and F_ext, the two MWHC functions the hollow
// trie distributor's query walk consults.
type Functions struct {
	Int *mwhc.Function
	Ext *mwhc.Function
}

// Label walks every key in keys through tr, emitting (node, path)
// behaviour pairs, and builds F_int / F_ext from the resulting streams.
func Label(tr *trie.Trie, keys []bits.BitString) (*Functions, error) {
	if tr.Root < 0 {
		return &Functions{}, nil
	}

	internal := newKeyset()
	external := newKeyset()
	emitted := make(map[int32]bool)

	for _, key := range keys {
		walkOne(tr, key, internal, external, emitted)
	}

	fInt, err := internal.build()
	if err != nil {
		return nil, fmt.Errorf("behaviour: building F_int: %w", err)
	}
	fExt, err := external.build()
	if err != nil {
		return nil, fmt.Errorf("behaviour: building F_ext: %w", err)
	}

	return &Functions{Int: fInt, Ext: fExt}, nil
}

// LabelBounded is Label's memory-bounded counterpart: instead of keeping a
// dedup map live across the whole walk, it spills every emitted (node,
// path, behaviour) triple to a temp file as it goes and only builds the
// dedup keysets on replay, the same spill-then-replay discipline the
// thesis's bucket builders use in their retry loop. dir is passed straight
// through to tempstream.NewWriter (empty uses os.TempDir()).
func LabelBounded(tr *trie.Trie, keys []bits.BitString, dir string) (*Functions, error) {
	if tr.Root < 0 {
		return &Functions{}, nil
	}

	internalW, err := tempstream.NewWriter(dir, "behaviour-int")
	if err != nil {
		return nil, fmt.Errorf("behaviour: opening internal spill file: %w: %w", distributor.ErrTempFileIO, err)
	}
	defer internalW.Cleanup()
	externalW, err := tempstream.NewWriter(dir, "behaviour-ext")
	if err != nil {
		return nil, fmt.Errorf("behaviour: opening external spill file: %w: %w", distributor.ErrTempFileIO, err)
	}
	defer externalW.Cleanup()

	emitted := make(map[int32]bool)
	for _, key := range keys {
		if err := walkOneSpilled(tr, key, internalW, externalW, emitted); err != nil {
			return nil, fmt.Errorf("behaviour: spilling labelled walk: %w: %w", distributor.ErrTempFileIO, err)
		}
	}
	if err := internalW.Close(); err != nil {
		return nil, fmt.Errorf("behaviour: closing internal spill file: %w: %w", distributor.ErrTempFileIO, err)
	}
	if err := externalW.Close(); err != nil {
		return nil, fmt.Errorf("behaviour: closing external spill file: %w: %w", distributor.ErrTempFileIO, err)
	}

	fInt, err := replaySpill(internalW.Path())
	if err != nil {
		return nil, fmt.Errorf("behaviour: replaying F_int spill: %w", err)
	}
	fExt, err := replaySpill(externalW.Path())
	if err != nil {
		return nil, fmt.Errorf("behaviour: replaying F_ext spill: %w", err)
	}
	return &Functions{Int: fInt, Ext: fExt}, nil
}

// replaySpill reads every record tempstream wrote for one of the two
// streams back from disk, deduplicates by the same fingerprint Label uses
// in memory, and builds the resulting MWHC function.
func replaySpill(path string) (*mwhc.Function, error) {
	r, err := tempstream.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", distributor.ErrTempFileIO, err)
	}
	defer r.Close()

	ks := newKeyset()
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", distributor.ErrTempFileIO, err)
		}
		path := bits.NewBitStringFormDataAndSize(rec.PathBits, rec.PathLen)
		ks.add(int32(rec.NodeIndex), path, distributor.Behaviour(rec.Behaviour))
	}
	return ks.build()
}

// keyset accumulates distinct (node, path) fingerprints and their
// behaviour values ahead of an MWHC build; MWHC requires a key set with no
// duplicates, so entries recurring across different keys' walks (the same
// node visited with the same consumed prefix) collapse to one slot.
type keyset struct {
	seen   map[uint64]bool
	keys   []uint64
	values []byte
}

func newKeyset() *keyset {
	return &keyset{seen: make(map[uint64]bool)}
}

func (k *keyset) add(nodeIndex int32, path bits.BitString, beh distributor.Behaviour) {
	fp := Fingerprint(nodeIndex, path)
	if k.seen[fp] {
		return
	}
	k.seen[fp] = true
	k.keys = append(k.keys, fp)
	k.values = append(k.values, byte(beh))
}

func (k *keyset) build() (*mwhc.Function, error) {
	return mwhc.Build(k.keys, k.values)
}

// Fingerprint is the canonical 64-bit key F_int/F_ext index on: the node's
// BFS index, the path's bit length, and the path's bits, hashed through
// internal/hashmix.Seeded (xxh3 followed by the Stafford finalizer).
func Fingerprint(nodeIndex int32, path bits.BitString) uint64 {
	numBytes := (path.Size() + 7) / 8
	buf := make([]byte, 8+numBytes)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(nodeIndex))
	binary.LittleEndian.PutUint32(buf[4:8], path.Size())
	copy(buf[8:], path.Data()[:numBytes])
	return hashmix.Seeded(buf, 0)
}

// walkOne descends tr following key's bits, emitting one behaviour label
// per visited node, and stops at the first LEFT/RIGHT divergence or once a
// leaf is reached.
func walkOne(tr *trie.Trie, key bits.BitString, internal, external *keyset, emitted map[int32]bool) {
	nodeIdx := tr.Root
	pos := uint32(0)
	var lastNode int32 = -1
	var lastPath bits.BitString

	for {
		n := &tr.Nodes[nodeIdx]
		remaining := key.Sub(pos, key.Size())
		c := remaining.GetLCPLength(n.Path)

		if n.IsLeaf() {
			path := remaining
			var beh distributor.Behaviour
			if c == n.Path.Size() && c == path.Size() {
				beh = distributor.Left
			} else if n.Path.At(c) {
				beh = distributor.Left
			} else {
				beh = distributor.Right
			}
			if lastNode != n.BFSIndex || !sameEmission(lastPath, path) {
				external.add(n.BFSIndex, path, beh)
			}
			return
		}

		if c == n.Path.Size() {
			if !emitted[n.BFSIndex] {
				internal.add(n.BFSIndex, n.Path, distributor.Follow)
				emitted[n.BFSIndex] = true
			}
			lastNode, lastPath = n.BFSIndex, n.Path

			newPos := pos + n.Path.Size() + 1
			if newPos > key.Size() {
				// Key too short to carry a branching bit; treat as a
				// left divergence at this node, matching the leaf case.
				internal.add(n.BFSIndex, n.Path, distributor.Left)
				return
			}
			bit := key.At(pos + n.Path.Size())
			pos = newPos
			if bit {
				nodeIdx = n.Right
			} else {
				nodeIdx = n.Left
			}
			continue
		}

		// Diverges inside this node's path.
		pathLen := n.Path.Size()
		if remaining.Size() < pathLen {
			pathLen = remaining.Size()
		}
		path := remaining.Sub(0, pathLen)
		var beh distributor.Behaviour
		if n.Path.At(c) {
			beh = distributor.Left
		} else {
			beh = distributor.Right
		}
		if lastNode != n.BFSIndex || !sameEmission(lastPath, path) {
			internal.add(n.BFSIndex, path, beh)
		}
		return
	}
}

// walkOneSpilled mirrors walkOne but writes emitted records to temp files
// instead of appending to an in-memory keyset.
func walkOneSpilled(tr *trie.Trie, key bits.BitString, internalW, externalW *tempstream.Writer, emitted map[int32]bool) error {
	nodeIdx := tr.Root
	pos := uint32(0)
	var lastNode int32 = -1
	var lastPath bits.BitString

	for {
		n := &tr.Nodes[nodeIdx]
		remaining := key.Sub(pos, key.Size())
		c := remaining.GetLCPLength(n.Path)

		if n.IsLeaf() {
			path := remaining
			var beh distributor.Behaviour
			if c == n.Path.Size() && c == path.Size() {
				beh = distributor.Left
			} else if n.Path.At(c) {
				beh = distributor.Left
			} else {
				beh = distributor.Right
			}
			if lastNode != n.BFSIndex || !sameEmission(lastPath, path) {
				if err := spillRecord(externalW, n.BFSIndex, path, beh); err != nil {
					return err
				}
			}
			return nil
		}

		if c == n.Path.Size() {
			if !emitted[n.BFSIndex] {
				if err := spillRecord(internalW, n.BFSIndex, n.Path, distributor.Follow); err != nil {
					return err
				}
				emitted[n.BFSIndex] = true
			}
			lastNode, lastPath = n.BFSIndex, n.Path

			newPos := pos + n.Path.Size() + 1
			if newPos > key.Size() {
				if err := spillRecord(internalW, n.BFSIndex, n.Path, distributor.Left); err != nil {
					return err
				}
				return nil
			}
			bit := key.At(pos + n.Path.Size())
			pos = newPos
			if bit {
				nodeIdx = n.Right
			} else {
				nodeIdx = n.Left
			}
			continue
		}

		pathLen := n.Path.Size()
		if remaining.Size() < pathLen {
			pathLen = remaining.Size()
		}
		path := remaining.Sub(0, pathLen)
		var beh distributor.Behaviour
		if n.Path.At(c) {
			beh = distributor.Left
		} else {
			beh = distributor.Right
		}
		if lastNode != n.BFSIndex || !sameEmission(lastPath, path) {
			if err := spillRecord(internalW, n.BFSIndex, path, beh); err != nil {
				return err
			}
		}
		return nil
	}
}

// spillRecord packs one labelled (node, path) pair into a tempstream.Record
// and appends it to w.
func spillRecord(w *tempstream.Writer, nodeIndex int32, path bits.BitString, beh distributor.Behaviour) error {
	numBytes := (path.Size() + 7) / 8
	return w.Write(tempstream.Record{
		NodeIndex: uint64(nodeIndex),
		PathLen:   path.Size(),
		PathBits:  path.Data()[:numBytes],
		Behaviour: byte(beh),
	})
}

func sameEmission(a, b bits.BitString) bool {
	if a == nil {
		return false
	}
	return a.Equal(b)
}

// VerifyRoundTrip runs query on every key and checks that the result
// agrees with its expected bucket index floor(i/bucketSize), returning an
// error for the first key that does not. It is not gated by a build tag and
// no builder in this module calls it; callers run it explicitly.
func VerifyRoundTrip(query func(bits.BitString) int64, keys []bits.BitString, bucketSize int) error {
	for i, k := range keys {
		want := int64(i / bucketSize)
		got := query(k)
		if got != want {
			return fmt.Errorf("behaviour: round-trip mismatch at key %d: want bucket %d, got %d", i, want, got)
		}
	}
	return nil
}
