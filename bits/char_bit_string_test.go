package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixAndLCP(t *testing.T) {
	a := NewFromBinary("110101")
	b := NewFromBinary("110110")

	require.Equal(t, uint32(4), a.GetLCPLength(b))
	require.True(t, a.HasPrefix(NewFromBinary("1101")))
	require.False(t, a.HasPrefix(NewFromBinary("1110")))
}

func TestCompareOrdering(t *testing.T) {
	require.Equal(t, -1, NewFromBinary("0").Compare(NewFromBinary("1")))
	require.Equal(t, 1, NewFromBinary("1").Compare(NewFromBinary("0")))
	require.Equal(t, 0, NewFromBinary("101").Compare(NewFromBinary("101")))
	// a proper prefix sorts before the string it prefixes.
	require.Equal(t, -1, NewFromBinary("10").Compare(NewFromBinary("101")))
}

func TestSubAndAppend(t *testing.T) {
	v := NewFromBinary("11010011")
	sub := v.Sub(2, 6)
	require.Equal(t, uint32(4), sub.Size())
	require.True(t, sub.Equal(NewFromBinary("0100")))

	joined := NewFromBinary("110").Append(NewFromBinary("011"))
	require.True(t, joined.Equal(NewFromBinary("110011")))
}

func TestWithBit(t *testing.T) {
	v := NewFromBinary("000")
	v2 := v.WithBit(1, true)
	require.True(t, v2.Equal(NewFromBinary("010")))
	require.True(t, v.Equal(NewFromBinary("000")), "WithBit must not mutate the receiver")
}

func TestPrefixOfEmpty(t *testing.T) {
	require.True(t, Empty().IsEmpty())
	require.True(t, NewFromBinary("101").HasPrefix(Empty()))
}

func TestHashIsDeterministic(t *testing.T) {
	a := NewFromBinary("11010011")
	b := NewFromBinary("11010011")
	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, a.HashWithSeed(42), b.HashWithSeed(42))
}
