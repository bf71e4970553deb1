// Package trie builds the compacted binary trie over a sorted, prefix-free
// sequence of delimiters. Each internal node carries a compacted "path" (a
// run of bits that would otherwise form a degree-1 chain); each leaf
// corresponds to exactly one delimiter. Node insertion is grounded on the
// longest-common-prefix node-splitting logic the thesis's
// trie/zft.ZFastTrie.InsertBitString uses for its own (heavier, handle
// tracking) trie, simplified here to the bare path-compression case the
// hollow and relative trie distributors both need.
package trie

import (
	"errors"
	"fmt"

	"github.com/beldenge/sux4j-go/bits"
	"github.com/beldenge/sux4j-go/distributor"
)

// Node is an arena-indexed trie node: child links are int32 indices into
// the owning Trie's Nodes slice, never pointers, so the intermediate trie
// can be released in one step (drop the slice) once encoding is done and
// never forms reference cycles.
type Node struct {
	// Path is the compacted bit run this node owns: for an internal node,
	// the bits consumed between the branching bit that led here and the
	// branching bit that leads to its children; for a leaf, the remaining
	// suffix of its delimiter after the last branching bit.
	Path bits.BitString

	// Left and Right are child indices, or -1 if this node is a leaf.
	Left, Right int32

	// DelimiterIndex is the index into the Trie's Delimiters slice this
	// leaf corresponds to; -1 for internal nodes.
	DelimiterIndex int32

	// BFSIndex is assigned by Trie.AssignBFSIndices; -1 until then.
	BFSIndex int32
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

// Trie is the intermediate, mutable compacted binary trie built from a
// sequence of delimiters. It is released once the hollow or relative trie
// encoding has consumed it.
type Trie struct {
	Nodes      []Node
	Root       int32 // -1 if the trie is empty (fewer than one full bucket)
	Delimiters []bits.BitString

	// MaxKeyLength is the maximum bit length observed across every key
	// scanned during the build (not only delimiters), used to size the
	// relative-trie variant's logW.
	MaxKeyLength int
}

// Build consumes keys (already sorted, distinct and pairwise prefix-free)
// and bucket size B, selecting delimiters as the last key of every full
// bucket of B keys, then inserting them into a freshly built compacted
// trie. It validates ordering and prefix-freedom as it scans, returning an
// *OrderError describing the offending index and rule; AsInvalidInput
// translates that into the distributor.InvalidInputError the construction
// API contract promises, applied by the hollowtrie and relativetrie
// builders at their own error-return boundary.
func Build(keys []bits.BitString, bucketSize int) (*Trie, error) {
	if bucketSize < 1 {
		return nil, fmt.Errorf("trie: bucket size must be >= 1, got %d", bucketSize)
	}

	t := &Trie{Root: -1}

	var prev bits.BitString
	for i, k := range keys {
		if i > 0 {
			cmp := prev.Compare(k)
			if cmp == 0 {
				return nil, &OrderError{Index: i, Reason: "duplicate key", Kind: distributor.Duplicate}
			}
			if cmp > 0 {
				return nil, &OrderError{Index: i, Reason: "not sorted", Kind: distributor.NotSorted}
			}
			if prev.HasPrefix(k) || k.HasPrefix(prev) {
				return nil, &OrderError{Index: i, Reason: "not prefix-free", Kind: distributor.NotPrefixFree}
			}
		}
		if int(k.Size()) > t.MaxKeyLength {
			t.MaxKeyLength = int(k.Size())
		}
		prev = k
	}

	for i := bucketSize - 1; i < len(keys); i += bucketSize {
		t.Delimiters = append(t.Delimiters, keys[i])
	}

	for i, d := range t.Delimiters {
		t.insert(d, int32(i))
	}

	return t, nil
}

// OrderError reports a violation of the sortedness/prefix-freedom
// precondition Build requires of its input. Kind lets callers translate it
// into a distributor.InvalidInputError at the public construction boundary
// without re-deriving which rule was broken.
type OrderError struct {
	Index  int
	Reason string
	Kind   distributor.InvalidInputKind
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("trie: input violates ordering contract at index %d: %s", e.Index, e.Reason)
}

// AsInvalidInput translates err into a *distributor.InvalidInputError if it
// is (or wraps) an *OrderError, so the package's two distributor builders
// can return the typed error the construction API contract promises.
func AsInvalidInput(err error) error {
	var oe *OrderError
	if errors.As(err, &oe) {
		return &distributor.InvalidInputError{Kind: oe.Kind, Index: oe.Index}
	}
	return err
}

// newLeaf appends a new leaf node for the given path and delimiter index,
// returning its arena index.
func (t *Trie) newLeaf(path bits.BitString, delimiterIndex int32) int32 {
	t.Nodes = append(t.Nodes, Node{
		Path:           path,
		Left:           -1,
		Right:          -1,
		DelimiterIndex: delimiterIndex,
		BFSIndex:       -1,
	})
	return int32(len(t.Nodes) - 1)
}

// newInternal appends a new internal node with the given path and children,
// returning its arena index.
func (t *Trie) newInternal(path bits.BitString, left, right int32) int32 {
	t.Nodes = append(t.Nodes, Node{
		Path:           path,
		Left:           left,
		Right:          right,
		DelimiterIndex: -1,
		BFSIndex:       -1,
	})
	return int32(len(t.Nodes) - 1)
}

func (t *Trie) child(n *Node, bit bool) int32 {
	if bit {
		return n.Right
	}
	return n.Left
}

func (t *Trie) setChild(n *Node, bit bool, idx int32) {
	if bit {
		n.Right = idx
	} else {
		n.Left = idx
	}
}

// insert adds key (the delimiterIndex-th delimiter) into the trie, splitting
// an existing node's path wherever the new key's bits diverge from it.
func (t *Trie) insert(key bits.BitString, delimiterIndex int32) {
	if t.Root < 0 {
		t.Root = t.newLeaf(key, delimiterIndex)
		return
	}

	t.insertInto(&t.Root, key, 0, delimiterIndex)
}

// insertInto walks from *slot (the child-pointer index currently occupying
// this position), consuming key starting at depth bits, and mutates the
// trie so that key ends up represented by a new leaf, splitting the
// existing node's path if key diverges partway through it.
func (t *Trie) insertInto(slot *int32, key bits.BitString, depth uint32, delimiterIndex int32) {
	nodeIdx := *slot
	node := &t.Nodes[nodeIdx]

	remaining := key.Sub(depth, key.Size())
	c := remaining.GetLCPLength(node.Path)

	if c == node.Path.Size() {
		// The key matches this node's whole compacted path.
		if node.IsLeaf() {
			// Distinct, prefix-free keys never reach this: Build already
			// rejected duplicates and prefixes before insertion began.
			return
		}
		newDepth := depth + node.Path.Size() + 1
		bit := remaining.At(node.Path.Size())
		child := t.child(node, bit)
		if child < 0 {
			leafPath := key.Sub(newDepth, key.Size())
			leaf := t.newLeaf(leafPath, delimiterIndex)
			t.setChild(&t.Nodes[nodeIdx], bit, leaf)
			return
		}
		t.insertInto(&child, key, newDepth, delimiterIndex)
		t.setChild(&t.Nodes[nodeIdx], bit, child)
		return
	}

	// The key diverges inside this node's path at offset c: split.
	oldBit := node.Path.At(c)
	upperPath := node.Path.Prefix(int(c))
	node.Path = node.Path.Sub(c+1, node.Path.Size())

	newLeafPath := key.Sub(depth+c+1, key.Size())
	newLeaf := t.newLeaf(newLeafPath, delimiterIndex)

	var left, right int32
	if oldBit {
		left, right = newLeaf, nodeIdx
	} else {
		left, right = nodeIdx, newLeaf
	}
	*slot = t.newInternal(upperPath, left, right)
}

// AssignBFSIndices numbers every node 0..len(Nodes)-1 in breadth-first
// order from the root and returns that order as a slice of arena indices,
// so callers can walk nodes by increasing BFS index directly.
func (t *Trie) AssignBFSIndices() []int32 {
	if t.Root < 0 {
		return nil
	}
	order := make([]int32, 0, len(t.Nodes))
	queue := []int32{t.Root}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		t.Nodes[idx].BFSIndex = int32(len(order))
		order = append(order, idx)
		n := &t.Nodes[idx]
		if !n.IsLeaf() {
			queue = append(queue, n.Left, n.Right)
		}
	}
	return order
}

// Size returns the number of nodes in the trie.
func (t *Trie) Size() int32 {
	return int32(len(t.Nodes))
}
