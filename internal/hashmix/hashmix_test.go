package hashmix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededIsDeterministic(t *testing.T) {
	a := Seeded([]byte("hollow trie"), 7)
	b := Seeded([]byte("hollow trie"), 7)
	require.Equal(t, a, b)
}

func TestSeededVariesWithSeed(t *testing.T) {
	a := Seeded([]byte("hollow trie"), 7)
	b := Seeded([]byte("hollow trie"), 8)
	require.NotEqual(t, a, b)
}

func TestRemixIsBijectiveOnSamples(t *testing.T) {
	seen := map[uint64]bool{}
	for i := uint64(0); i < 1000; i++ {
		z := Remix(i)
		require.False(t, seen[z], "remix collided for distinct inputs")
		seen[z] = true
	}
}
