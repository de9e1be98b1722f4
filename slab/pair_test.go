package slab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/slab/arena"
	"github.com/joshuapare/slabkit/slab/host"
)

func u8List() ListType { return ListType{Item: U8, Width: W8} }

func openPair(t *testing.T, pt PairType, opts ...host.MemOption) *Pair {
	t.Helper()
	p, err := pt.Open(openType(t, pt, opts...))
	require.NoError(t, err)
	return p
}

func TestPairBoundaryDerivation(t *testing.T) {
	pt := PairType{First: u8List(), Second: u8List()}

	// [2 items: a b][1 item: c] — the boundary is wherever First ends.
	h := host.NewMem([]byte{2, 'a', 'b', 1, 'c'})
	a := arena.New(h)
	v, err := a.Open(0, 5)
	require.NoError(t, err)
	p, err := pt.Open(v)
	require.NoError(t, err)

	assert.Equal(t, 0, p.First().Start())
	assert.Equal(t, 3, p.First().Len())
	assert.Equal(t, 3, p.Second().Start())
	assert.Equal(t, 2, p.Second().Len())
}

func TestPairCrossSiblingResize(t *testing.T) {
	pt := PairType{First: u8List(), Second: u8List()}
	p := openPair(t, pt)

	first, err := u8List().Open(p.First())
	require.NoError(t, err)
	second, err := u8List().Open(p.Second())
	require.NoError(t, err)

	require.NoError(t, second.InsertRaw(0, []byte{7, 8}))

	// Growing First must shift Second without it being re-opened.
	require.NoError(t, first.InsertRaw(0, []byte{1, 2, 3}))

	assert.Equal(t, []byte{7, 8}, listContents(t, second),
		"second stays addressable and correct after first resizes")
	assert.Equal(t, []byte{1, 2, 3}, listContents(t, first))
	assert.Equal(t, 4, p.Second().Start())

	// And shrinking First shifts it back.
	require.NoError(t, first.RemoveRange(0, 2))
	assert.Equal(t, []byte{7, 8}, listContents(t, second))
	assert.Equal(t, 2, p.Second().Start())
}

func TestPairResizeFirst(t *testing.T) {
	pt := PairType{First: Bytes(2), Second: Bytes(3)}
	h := host.NewMem([]byte{1, 2, 3, 4, 5})
	a := arena.New(h)
	v, err := a.Open(0, 5)
	require.NoError(t, err)
	p, err := pt.Open(v)
	require.NoError(t, err)

	require.NoError(t, p.ResizeFirst(4))
	fb, err := p.First().Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0, 0}, fb, "growth extends the first half's tail with zeros")
	sb, err := p.Second().Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5}, sb, "second half's bytes ride along intact")

	require.NoError(t, p.ResizeFirst(1))
	fb, err = p.First().Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, fb)
	sb, err = p.Second().Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5}, sb)
}

func TestPairResizeSecond(t *testing.T) {
	pt := PairType{First: Bytes(2), Second: Bytes(2)}
	h := host.NewMem([]byte{1, 2, 3, 4})
	a := arena.New(h)
	v, err := a.Open(0, 4)
	require.NoError(t, err)
	p, err := pt.Open(v)
	require.NoError(t, err)

	require.NoError(t, p.ResizeSecond(4))
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0}, h.Bytes(), "second grows at the tail; first never moves")

	require.NoError(t, p.ResizeSecond(1))
	assert.Equal(t, []byte{1, 2, 3}, h.Bytes())
	assert.Equal(t, 2, p.Second().Start())
}

func TestPairOpenRejectsTrailing(t *testing.T) {
	pt := PairType{First: Bytes(1), Second: Bytes(1)}
	h := host.NewMem([]byte{1, 2, 3})
	a := arena.New(h)
	v, err := a.Open(0, 3)
	require.NoError(t, err)
	_, err = pt.Open(v)
	assert.ErrorIs(t, err, ErrTrailing)
}

func TestPairRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		p := openPair(t, PairType{First: u8List(), Second: u8List()})
		first, err := u8List().Open(p.First())
		require.NoError(t, err)

		items := make([]byte, n)
		for i := range items {
			items[i] = byte(i + 1)
		}
		require.NoError(t, first.InsertRaw(0, items))
		assert.Equal(t, append([]byte{}, items...), listContents(t, first))
	}
}
