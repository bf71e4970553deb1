package eliasfano

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAndGetRoundTrip(t *testing.T) {
	values := []uint64{0, 0, 1, 4, 4, 4, 10, 55, 55, 1000}
	l := Build(values)
	require.Equal(t, len(values), l.Len())
	for i, v := range values {
		require.Equal(t, v, l.Get(i), "index %d", i)
	}
}

func TestBuildEmpty(t *testing.T) {
	l := Build(nil)
	require.Equal(t, 0, l.Len())
}

func TestBuildSingleton(t *testing.T) {
	l := Build([]uint64{42})
	require.Equal(t, uint64(42), l.Get(0))
}

func TestBuildAllZero(t *testing.T) {
	values := []uint64{0, 0, 0, 0}
	l := Build(values)
	for i := range values {
		require.Equal(t, uint64(0), l.Get(i))
	}
}
