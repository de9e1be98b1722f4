package host

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBufferRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file-backed buffer test in short mode")
	}
	path := filepath.Join(t.TempDir(), "acct.slab")

	b, err := CreateFile(path, 4, 4096, WithFileMaxGrowth(64))
	require.NoError(t, err)
	copy(b.Bytes(), []byte{9, 8, 7, 6})
	require.NoError(t, b.Resize(8))
	assert.Equal(t, []byte{9, 8, 7, 6, 0, 0, 0, 0}, b.Bytes())
	require.NoError(t, b.Sync())
	require.NoError(t, b.Close())

	reopened, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []byte{9, 8, 7, 6, 0, 0, 0, 0}, reopened.Bytes(),
		"logical length and contents must survive close/open")
}

func TestFileBufferGrowthLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file-backed buffer test in short mode")
	}
	path := filepath.Join(t.TempDir(), "acct.slab")

	b, err := CreateFile(path, 8, 64, WithFileMaxGrowth(4))
	require.NoError(t, err)
	defer b.Close()

	copy(b.Bytes(), "abcdefgh")
	require.ErrorIs(t, b.Resize(13), ErrGrowthLimit)
	assert.Equal(t, []byte("abcdefgh"), b.Bytes())

	// Capacity bound also reports as a growth failure.
	require.NoError(t, b.Resize(12))
	for b.MaxGrowth() >= 4 && len(b.Bytes())+4 <= 64 {
		require.NoError(t, b.Resize(len(b.Bytes())+4))
	}
	require.ErrorIs(t, b.Resize(len(b.Bytes())+4), ErrGrowthLimit)
}
