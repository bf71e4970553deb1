// Package relativetrie implements the RelativeTrieDistributor: instead of
// materialising the compacted trie's topology (hollowtrie's approach), it
// keeps an approximate signature table over the trie's internal nodes plus
// a monotone minimal-perfect ranker over a derived "ranker string" set, and
// corrects the signature table's false positives through a mistake table.
// Construction is grounded on the same compacted trie internal/trie builds
// for the hollow-trie variant; the signature scheme itself — probing
// two-fattest-truncated node handles with a verifying hash, falling back to
// an exact correction table on mismatch — is grounded on the thesis's
// trie/azft.ApproxZFastTrie (GetExistingPrefix's fat binary search) and
// trie/zft.Node's Handle/HandleLength two-fattest truncation.
package relativetrie

import (
	"fmt"
	mathbits "math/bits"
	"sort"

	bitvec "github.com/beldenge/sux4j-go/bits"
	"github.com/beldenge/sux4j-go/distributor"
	"github.com/beldenge/sux4j-go/internal/hashmix"
	"github.com/beldenge/sux4j-go/internal/mwhc"
	"github.com/beldenge/sux4j-go/internal/succinct"
	"github.com/beldenge/sux4j-go/internal/trie"
)

// seeds for the four independent MWHC key spaces this package builds; kept
// distinct so that a key belonging to two tables (e.g. a key whose bits
// happen to equal a ranker string) doesn't collide across tables, even
// though each mwhc.Function/WideFunction only ever needs to disambiguate
// within its own key set.
const (
	seedHandle     = 0x73696731 // "sig1"
	seedSigValue   = 0x73696732 // "sig2"
	seedExit       = 0x65786974 // "exit"
	seedRanker     = 0x72616e6b // "rank"
	seedCorrection = 0x636f7272 // "corr"
)

// Distributor is a constructed RelativeTrieDistributor, ready for queries.
type Distributor struct {
	size       int32
	bucketSize int
	numDelims  int

	logW    uint // bits needed to represent a node's extent length exactly
	logLogW uint // extra verifying-hash bits layered on top of logW

	sig        *mwhc.WideFunction // handle fingerprint -> (hash<<logW | length)
	exitDir    *mwhc.Function     // key fingerprint -> LEFT/RIGHT
	ranker     *mwhc.WideFunction // ranker-string fingerprint -> sorted rank in R
	leaves     *succinct.BitVector
	mistakes   map[uint32]struct{}
	correction *mwhc.WideFunction // key fingerprint -> ground-truth length
}

// Build constructs a Distributor over an iterable of keys (sorted, distinct,
// pairwise prefix-free) with the given bucket size. keys is consumed fully
// before construction begins; wrapping it in bitvec.NewCheckedSortedIterator
// first gets the caller a debug-build sanity check on top of the
// authoritative ordering validation trie.Build performs.
func Build(keys bitvec.BitStringIterator, bucketSize int) (*Distributor, error) {
	keySlice, err := bitvec.Collect(bitvec.NewCheckedSortedIterator(keys))
	if err != nil {
		return nil, fmt.Errorf("relativetrie: %w", err)
	}
	if len(keySlice) == 0 {
		return &Distributor{bucketSize: bucketSize}, nil
	}

	tr, err := trie.Build(keySlice, bucketSize)
	if err != nil {
		return nil, trie.AsInvalidInput(err)
	}

	d := &Distributor{bucketSize: bucketSize, numDelims: len(tr.Delimiters)}
	if tr.Root < 0 {
		return d, nil
	}

	order := tr.AssignBFSIndices()
	d.size = int32(len(order))

	logW := mathbits.Len(uint(tr.MaxKeyLength))
	if logW < 1 {
		logW = 1
	}
	logLogW := mathbits.Len(uint(logW))
	if logLogW < 1 {
		logLogW = 1
	}
	d.logW, d.logLogW = uint(logW), uint(logLogW)

	extents, extentLens, parentLens := computeExtents(tr)

	if err := d.buildSignatures(tr, extents, extentLens, parentLens); err != nil {
		return nil, fmt.Errorf("relativetrie: %w", err)
	}

	groundLens, groundDirs := groundTruthExits(tr, keySlice)
	if err := d.buildExitAndMistakes(keySlice, groundLens, groundDirs); err != nil {
		return nil, fmt.Errorf("relativetrie: %w", err)
	}

	if err := d.buildRanker(tr, extents, order); err != nil {
		return nil, fmt.Errorf("relativetrie: %w", err)
	}

	return d, nil
}

// computeExtents walks tr from the root, accumulating each node's full
// extent (the concatenation of every ancestor's compacted path plus the
// branching bits between them) and its length, plus its parent's extent
// length (0 for the root, matching trie/zft.Node.HandleLength's
// nameLength-1 clamp).
func computeExtents(tr *trie.Trie) (extents []bitvec.BitString, extentLens, parentLens []uint32) {
	n := len(tr.Nodes)
	extents = make([]bitvec.BitString, n)
	extentLens = make([]uint32, n)
	parentLens = make([]uint32, n)

	var walk func(idx int32, full bitvec.BitString, parentLen uint32)
	walk = func(idx int32, full bitvec.BitString, parentLen uint32) {
		extents[idx] = full
		extentLens[idx] = full.Size()
		parentLens[idx] = parentLen

		node := &tr.Nodes[idx]
		if node.IsLeaf() {
			return
		}
		leftFull := full.AppendBit(false).Append(tr.Nodes[node.Left].Path)
		walk(node.Left, leftFull, full.Size())
		rightFull := full.AppendBit(true).Append(tr.Nodes[node.Right].Path)
		walk(node.Right, rightFull, full.Size())
	}
	walk(tr.Root, tr.Nodes[tr.Root].Path, 0)
	return
}

func (d *Distributor) mask(width uint) uint32 {
	if width >= 32 {
		return ^uint32(0)
	}
	return (uint32(1) << width) - 1
}

// buildSignatures constructs S: for every internal node, the handle
// (its extent truncated to the two-fattest number in (parentLen, len])
// maps to a packed value of the node's own extent length (exact, logW
// bits) and a verifying hash of its full extent (logLogW bits).
func (d *Distributor) buildSignatures(tr *trie.Trie, extents []bitvec.BitString, extentLens, parentLens []uint32) error {
	var sigKeys []uint64
	var sigVals []uint32
	seen := make(map[uint64]bool)

	for idx := range tr.Nodes {
		node := &tr.Nodes[idx]
		if node.IsLeaf() {
			continue
		}
		full := extents[idx]
		length := extentLens[idx]
		fFast := bitvec.TwoFattest(uint64(parentLens[idx]), uint64(length))
		handle := full.Prefix(int(fFast))

		fp := handle.HashWithSeed(seedHandle)
		if seen[fp] {
			continue
		}
		seen[fp] = true

		hv := hashmix.Seeded(full.Data(), seedSigValue)
		hashPart := uint32(hv) & d.mask(d.logLogW)
		lengthPart := length & d.mask(d.logW)
		packed := (hashPart << d.logW) | lengthPart

		sigKeys = append(sigKeys, fp)
		sigVals = append(sigVals, packed)
	}

	sig, err := mwhc.BuildWide(sigKeys, sigVals)
	if err != nil {
		return fmt.Errorf("building signature table: %w", err)
	}
	d.sig = sig
	return nil
}

// nodeStringLength resolves the length of the longest node extent that is
// a prefix of v, via the same fat binary search trie/azft.GetExistingPrefix
// runs over two-fattest-aligned candidate boundaries, consulting the
// signature table at each step and falling back to the exact correction
// table when v's 32-bit signature is flagged as a known mistake.
func (d *Distributor) nodeStringLength(v bitvec.BitString) uint32 {
	h := v.HashWithSeed(0)
	mistakeSig := uint32(h ^ (h >> 32))
	if _, mistaken := d.mistakes[mistakeSig]; mistaken {
		return d.correction.Lookup(v.HashWithSeed(seedCorrection))
	}

	var a, b int64 = 0, int64(v.Size())
	var result uint32
	for a < b {
		fFast := bitvec.TwoFattest(uint64(a), uint64(b))
		if fFast == 0 {
			break
		}
		handle := v.Prefix(int(fFast))
		packed := d.sig.Lookup(handle.HashWithSeed(seedHandle))
		lengthPart := packed & d.mask(d.logW)
		hashPart := packed >> d.logW

		if uint64(lengthPart) < fFast || lengthPart > v.Size() {
			b = int64(fFast) - 1
			continue
		}

		candidate := v.Prefix(int(lengthPart))
		hv := hashmix.Seeded(candidate.Data(), seedSigValue)
		if uint32(hv)&d.mask(d.logLogW) == hashPart {
			a = int64(lengthPart)
			result = lengthPart
		} else {
			b = int64(fFast) - 1
		}
	}
	return result
}

// groundTruthExits walks every key through tr to determine the exact
// bit position where its walk first diverges from the trie (the value
// nodeStringLength approximates) and the divergence direction, the same
// walk behaviour.walkOne performs for the hollow-trie variant's labelling
// pass, simplified to report only the final exit point.
func groundTruthExits(tr *trie.Trie, keys []bitvec.BitString) (lengths []uint32, dirs []distributor.Behaviour) {
	lengths = make([]uint32, len(keys))
	dirs = make([]distributor.Behaviour, len(keys))
	for i, key := range keys {
		lengths[i], dirs[i] = groundTruthExit(tr, key)
	}
	return
}

func groundTruthExit(tr *trie.Trie, key bitvec.BitString) (uint32, distributor.Behaviour) {
	nodeIdx := tr.Root
	pos := uint32(0)
	for {
		n := &tr.Nodes[nodeIdx]
		remaining := key.Sub(pos, key.Size())
		c := remaining.GetLCPLength(n.Path)

		if n.IsLeaf() {
			if c == n.Path.Size() && c == remaining.Size() {
				return pos + c, distributor.Left
			}
			if n.Path.At(c) {
				return pos + c, distributor.Left
			}
			return pos + c, distributor.Right
		}

		if c == n.Path.Size() {
			newPos := pos + n.Path.Size() + 1
			if newPos > key.Size() {
				return pos + n.Path.Size(), distributor.Left
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

		if n.Path.At(c) {
			return pos + c, distributor.Left
		}
		return pos + c, distributor.Right
	}
}

// buildExitAndMistakes builds B' (the per-key exit-direction function) over
// every original key, then evaluates the approximate nodeStringLength
// against the ground truth for every key, collecting the 32-bit signatures
// of every key where they disagree into the mistake set, and finally builds
// the correction table over every key whose signature lands in that set —
// including false positives that were never actually mistaken, per the
// resolved Open Question in SPEC_FULL.md section 9.
func (d *Distributor) buildExitAndMistakes(keys []bitvec.BitString, groundLens []uint32, groundDirs []distributor.Behaviour) error {
	exitKeys := make([]uint64, len(keys))
	exitVals := make([]byte, len(keys))
	for i, key := range keys {
		exitKeys[i] = key.HashWithSeed(seedExit)
		exitVals[i] = byte(groundDirs[i])
	}
	exitFn, err := mwhc.Build(exitKeys, exitVals)
	if err != nil {
		return fmt.Errorf("building exit-direction table: %w", err)
	}
	d.exitDir = exitFn

	mistakeSigs := make(map[uint32]struct{})
	for i, key := range keys {
		approx := d.nodeStringLength(key)
		if approx != groundLens[i] {
			h := key.HashWithSeed(0)
			mistakeSigs[uint32(h^(h>>32))] = struct{}{}
		}
	}
	d.mistakes = mistakeSigs

	var corrKeys []uint64
	var corrVals []uint32
	for i, key := range keys {
		h := key.HashWithSeed(0)
		if _, ok := mistakeSigs[uint32(h^(h>>32))]; !ok {
			continue
		}
		corrKeys = append(corrKeys, key.HashWithSeed(seedCorrection))
		corrVals = append(corrVals, groundLens[i])
	}
	correction, err := mwhc.BuildWide(corrKeys, corrVals)
	if err != nil {
		return fmt.Errorf("building mistake-correction table: %w", err)
	}
	d.correction = correction
	return nil
}

// buildRanker constructs the ranker string set R: for every internal node's
// full extent v, three suffix-shape variants (last-one-bit truncation,
// append-a-one, last-zero-bit-flipped truncation), plus (for every leaf)
// the leaf's own extent directly — a leaf's extent is exactly the
// delimiter it represents, so inserting it verbatim is what lets the
// leaves bitmap answer "is R[i] a delimiter" truthfully, closing the loop
// the derivation below relies on without reconstructing delimiter
// membership by some other means.
func (d *Distributor) buildRanker(tr *trie.Trie, extents []bitvec.BitString, order []int32) error {
	seen := make(map[string]bool)
	var rList []bitvec.BitString
	add := func(v bitvec.BitString) {
		key := v.String()
		if seen[key] {
			return
		}
		seen[key] = true
		rList = append(rList, v)
	}

	for _, idx := range order {
		node := &tr.Nodes[idx]
		full := extents[idx]
		if node.IsLeaf() {
			add(full)
			continue
		}
		if v, ok := truncateToLastOneInclusive(full); ok {
			add(v)
		}
		add(full.AppendBit(true))
		if v, ok := truncateToLastZeroFlipped(full); ok {
			add(v)
		}
	}

	sort.Slice(rList, func(i, j int) bool { return rList[i].Compare(rList[j]) < 0 })

	delimSet := make(map[string]bool, len(tr.Delimiters))
	for _, delim := range tr.Delimiters {
		delimSet[delim.String()] = true
	}

	leaves := succinct.NewBitVector()
	rankerKeys := make([]uint64, len(rList))
	rankerVals := make([]uint32, len(rList))
	for i, v := range rList {
		leaves.PushBack(delimSet[v.String()])
		rankerKeys[i] = v.HashWithSeed(seedRanker)
		rankerVals[i] = uint32(i)
	}

	ranker, err := mwhc.BuildWide(rankerKeys, rankerVals)
	if err != nil {
		return fmt.Errorf("building ranker: %w", err)
	}
	d.ranker = ranker
	d.leaves = leaves
	return nil
}

// truncateToLastOneInclusive returns v truncated to (and including) its
// highest-index set bit, or false if v is all zeros.
func truncateToLastOneInclusive(v bitvec.BitString) (bitvec.BitString, bool) {
	if v.Size() == 0 {
		return nil, false
	}
	trimmed := v.TrimTrailingZeros()
	if trimmed.Size() == 0 {
		return nil, false
	}
	return trimmed, true
}

// truncateToLastZeroFlipped returns v truncated to (and including) its
// highest-index clear bit, with that bit flipped to one, or false if v is
// all ones. The search for that bit's position still has to walk v: no
// library method surfaces "last clear bit" directly, only IsAllOnes's
// yes/no, which is what lets this short-circuit the no-such-bit case
// without the loop running to the end to discover it.
func truncateToLastZeroFlipped(v bitvec.BitString) (bitvec.BitString, bool) {
	if v.IsAllOnes() {
		return nil, false
	}
	for i := int(v.Size()) - 1; i >= 0; i-- {
		if !v.At(uint32(i)) {
			return v.Prefix(i).AppendBit(true), true
		}
	}
	return nil, false
}

// GetLong returns key's bucket index, in [0, numBuckets). Behaviour is
// undefined for keys outside the construction set.
func (d *Distributor) GetLong(key bitvec.BitString) int64 {
	if d.size == 0 {
		return 0
	}

	length := d.nodeStringLength(key)
	var bit bool
	if length < key.Size() {
		bit = key.At(length)
	}
	dir := distributor.Behaviour(d.exitDir.Lookup(key.HashWithSeed(seedExit)))

	var r bitvec.BitString
	switch {
	case dir == distributor.Left && bit:
		r = key.Sub(0, length).AppendBit(true)
	case dir == distributor.Left && !bit:
		v := key.Sub(0, length)
		if t, ok := truncateToLastOneInclusive(v); ok {
			r = t
		} else {
			r = v
		}
	case dir == distributor.Right && bit:
		v := key.Sub(0, length)
		t, ok := truncateToLastZeroFlipped(v)
		if !ok {
			return int64(d.numDelims)
		}
		r = t
	default: // Right, bit == 0
		r = key.Sub(0, length).AppendBit(true)
	}

	rank := d.ranker.Lookup(r.HashWithSeed(seedRanker))
	return int64(d.leaves.Rank(uint64(rank), true))
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
	n := uint64(d.sig.NumBits()) + uint64(d.exitDir.NumBits()) + uint64(d.ranker.NumBits())
	n += uint64(d.correction.NumBits())
	n += d.leaves.NumBits()
	n += uint64(len(d.mistakes)) * 32
	return int64(n)
}

// ContainsKey always returns true: RelativeTrieDistributor is not a
// membership tester.
func (d *Distributor) ContainsKey(key bitvec.BitString) bool {
	return true
}

var _ distributor.Distributor[bitvec.BitString] = (*Distributor)(nil)
