package trie

import (
	"testing"

	"github.com/beldenge/sux4j-go/bits"
	"github.com/stretchr/testify/require"
)

func keysFromBinary(strs ...string) []bits.BitString {
	out := make([]bits.BitString, len(strs))
	for i, s := range strs {
		out[i] = bits.NewFromBinary(s)
	}
	return out
}

func TestBuildScenarioA(t *testing.T) {
	keys := keysFromBinary("0001", "0010", "0100", "1000")
	tr, err := Build(keys, 2)
	require.NoError(t, err)
	require.Len(t, tr.Delimiters, 2)
	require.True(t, tr.Delimiters[0].Equal(bits.NewFromBinary("0010")))
	require.True(t, tr.Delimiters[1].Equal(bits.NewFromBinary("1000")))
	require.GreaterOrEqual(t, tr.Size(), int32(1))
}

func TestBuildAssignsBFSIndices(t *testing.T) {
	keys := keysFromBinary("0001", "0010", "0100", "1000", "1001", "1010")
	tr, err := Build(keys, 2)
	require.NoError(t, err)
	order := tr.AssignBFSIndices()
	require.Len(t, order, int(tr.Size()))
	for i, idx := range order {
		require.Equal(t, int32(i), tr.Nodes[idx].BFSIndex)
	}
	// Root must come first in BFS order.
	require.Equal(t, tr.Root, order[0])
}

func TestBuildRejectsDuplicate(t *testing.T) {
	keys := keysFromBinary("01", "01")
	_, err := Build(keys, 2)
	require.Error(t, err)
	var oe *OrderError
	require.ErrorAs(t, err, &oe)
	require.Equal(t, 1, oe.Index)
}

func TestBuildRejectsNotPrefixFree(t *testing.T) {
	keys := keysFromBinary("01", "010")
	_, err := Build(keys, 2)
	require.Error(t, err)
}

func TestBuildRejectsNotSorted(t *testing.T) {
	keys := keysFromBinary("10", "01")
	_, err := Build(keys, 2)
	require.Error(t, err)
}

func TestBuildEmptyWhenFewerThanOneBucket(t *testing.T) {
	keys := keysFromBinary("01", "10")
	tr, err := Build(keys, 4)
	require.NoError(t, err)
	require.Empty(t, tr.Delimiters)
	require.Equal(t, int32(-1), tr.Root)
}

func TestBuildWithManyKeysReconstructsDelimiters(t *testing.T) {
	// 16 distinct 4-bit keys plus a trailing 1 sentinel bit for
	// prefix-freedom, in lexicographic order.
	var keys []bits.BitString
	for i := 0; i < 16; i++ {
		s := ""
		for b := 3; b >= 0; b-- {
			if (i>>uint(b))&1 == 1 {
				s += "1"
			} else {
				s += "0"
			}
		}
		keys = append(keys, bits.NewFromBinary(s+"1"))
	}
	tr, err := Build(keys, 4)
	require.NoError(t, err)
	require.Len(t, tr.Delimiters, 4)

	// Every leaf's ancestors' paths + branch bits + own path must
	// reconstruct the original delimiter exactly.
	order := tr.AssignBFSIndices()
	_ = order
	var walk func(idx int32, prefix bits.BitString)
	leaves := map[string]bool{}
	walk = func(idx int32, prefix bits.BitString) {
		n := &tr.Nodes[idx]
		full := prefix.Append(n.Path)
		if n.IsLeaf() {
			leaves[full.String()] = true
			return
		}
		walk(n.Left, full.Append(bits.NewFromBinary("0")))
		walk(n.Right, full.Append(bits.NewFromBinary("1")))
	}
	walk(tr.Root, bits.Empty())

	for _, d := range tr.Delimiters {
		require.True(t, leaves[d.String()], "missing delimiter %s in reconstructed trie", d.String())
	}
}
