package succinct

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankSelectRoundTrip(t *testing.T) {
	bv := NewBitVector()
	bits := []bool{true, false, false, true, true, false, true, false, false, true}
	for _, bit := range bits {
		bv.PushBack(bit)
	}
	require.Equal(t, uint64(len(bits)), bv.Len())

	var ones uint64
	for i, bit := range bits {
		require.Equal(t, bit, bv.Bit(uint64(i)))
		require.Equal(t, ones, bv.Rank(uint64(i), true))
		if bit {
			require.Equal(t, uint64(i), bv.Select(ones, true))
			ones++
		}
	}
	require.Equal(t, ones, bv.NumOnes())
}
