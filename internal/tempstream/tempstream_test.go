package tempstream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	w, err := NewWriter("", "tempstream-test")
	require.NoError(t, err)
	defer w.Cleanup()

	records := []Record{
		{NodeIndex: 0, PathLen: 3, PathBits: []byte{0b101_00000}, Behaviour: 0},
		{NodeIndex: 7, PathLen: 0, PathBits: nil, Behaviour: 1},
		{NodeIndex: 1000, PathLen: 12, PathBits: []byte{0xAB, 0xC0}, Behaviour: 2},
	}
	for _, r := range records {
		require.NoError(t, w.Write(r))
	}
	require.Equal(t, 3, w.Len())
	require.NoError(t, w.Close())

	r, err := OpenReader(w.Path())
	require.NoError(t, err)
	defer r.Close()

	for _, want := range records {
		got, err := r.Next()
		require.NoError(t, err)
		require.Equal(t, want.NodeIndex, got.NodeIndex)
		require.Equal(t, want.PathLen, got.PathLen)
		require.Equal(t, want.Behaviour, got.Behaviour)
	}
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}
