package hollowtrie

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/beldenge/sux4j-go/bits"
	"github.com/beldenge/sux4j-go/distributor"
	"github.com/stretchr/testify/require"
)

func keysFromBinary(strs ...string) []bits.BitString {
	out := make([]bits.BitString, len(strs))
	for i, s := range strs {
		out[i] = bits.NewFromBinary(s)
	}
	return out
}

// Scenario (a) from the bucket-correctness suite: four 4-bit keys, bucket
// size 2, expected buckets 0, 0, 1, 1.
func TestBuildScenarioA(t *testing.T) {
	keys := keysFromBinary("0001", "0010", "0100", "1000")
	d, err := Build(bits.NewSliceBitStringIterator(keys), 2)
	require.NoError(t, err)

	want := []int64{0, 0, 1, 1}
	for i, k := range keys {
		require.Equal(t, want[i], d.GetLong(k), "key %d", i)
	}
}

// Scenario (b): the 64 distinct 6-bit values with a trailing sentinel bit,
// bucket size 8; expected bucket for index i is floor(i/8).
func TestBuildScenarioB(t *testing.T) {
	var keys []bits.BitString
	for i := 0; i < 64; i++ {
		s := ""
		for b := 5; b >= 0; b-- {
			if (i>>uint(b))&1 == 1 {
				s += "1"
			} else {
				s += "0"
			}
		}
		keys = append(keys, bits.NewFromBinary(s+"1"))
	}
	d, err := Build(bits.NewSliceBitStringIterator(keys), 8)
	require.NoError(t, err)

	for i, k := range keys {
		require.Equal(t, int64(i/8), d.GetLong(k), "key %d", i)
	}
}

// Scenario (c), scaled down for test runtime: random prefix-free keys,
// sorted, every query must land in its own bucket.
func TestBuildScenarioCRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 2000
	const bucketSize = 16

	// Lengths vary 20-199 bits, so a trailing sentinel alone isn't enough
	// to keep the set prefix-free (a shorter key's bits can be a literal
	// prefix of a longer key's); an 8-bit length field in front of the
	// random body is, since two different lengths then diverge inside
	// that field before either body is reached.
	seen := map[string]bool{}
	var raw []string
	for len(raw) < n {
		length := 20 + rng.Intn(180)
		s := []byte(fmt.Sprintf("%08b", length))
		for i := 0; i < length; i++ {
			if rng.Intn(2) == 1 {
				s = append(s, '1')
			} else {
				s = append(s, '0')
			}
		}
		str := string(s)
		if seen[str] {
			continue
		}
		seen[str] = true
		raw = append(raw, str)
	}
	sortedRaw := append([]string(nil), raw...)
	sortStrings(sortedRaw)

	keys := make([]bits.BitString, len(sortedRaw))
	for i, s := range sortedRaw {
		keys[i] = bits.NewFromBinary(s)
	}

	d, err := Build(bits.NewSliceBitStringIterator(keys), bucketSize)
	require.NoError(t, err)
	for i, k := range keys {
		require.Equal(t, int64(i/bucketSize), d.GetLong(k), "key %d", i)
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Scenario (f): an empty key set always returns bucket 0 and occupies no
// bits.
func TestBuildEmpty(t *testing.T) {
	d, err := Build(bits.NewSliceBitStringIterator(nil), 4)
	require.NoError(t, err)
	require.Equal(t, int32(0), d.Size())
	require.Equal(t, int64(0), d.NumBits())
	require.Equal(t, int64(0), d.GetLong(bits.NewFromBinary("0101")))
}

// Scenario (d): duplicate keys are rejected before any distributor is
// built.
func TestBuildRejectsDuplicate(t *testing.T) {
	_, err := Build(bits.NewSliceBitStringIterator(keysFromBinary("01", "01")), 2)
	require.Error(t, err)
	require.True(t, errors.Is(err, distributor.ErrInvalidInput))
	var ie *distributor.InvalidInputError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, distributor.Duplicate, ie.Kind)
	require.Equal(t, 1, ie.Index)
}

// Scenario (e): keys that aren't pairwise prefix-free are rejected.
func TestBuildRejectsNotPrefixFree(t *testing.T) {
	_, err := Build(bits.NewSliceBitStringIterator(keysFromBinary("01", "010")), 2)
	require.Error(t, err)
	var ie *distributor.InvalidInputError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, distributor.NotPrefixFree, ie.Kind)
}

// Monotonicity: query(k_i) is non-decreasing and increments by exactly 1
// every bucketSize positions.
func TestQueryIsMonotone(t *testing.T) {
	var keys []bits.BitString
	for i := 0; i < 40; i++ {
		s := ""
		for b := 5; b >= 0; b-- {
			if (i>>uint(b))&1 == 1 {
				s += "1"
			} else {
				s += "0"
			}
		}
		keys = append(keys, bits.NewFromBinary(s+"1"))
	}
	const bucketSize = 4
	d, err := Build(bits.NewSliceBitStringIterator(keys), bucketSize)
	require.NoError(t, err)

	var prev int64 = -1
	for i, k := range keys {
		got := d.GetLong(k)
		require.Equal(t, int64(i/bucketSize), got)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}
