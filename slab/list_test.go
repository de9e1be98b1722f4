package slab

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/slab/arena"
	"github.com/joshuapare/slabkit/slab/host"
)

// openType seeds a buffer with the zero value of typ and opens a root view
// over it.
func openType(t *testing.T, typ Type, opts ...host.MemOption) *arena.View {
	t.Helper()
	zero := typ.AppendZero(nil)
	a := arena.New(host.NewMem(zero, opts...))
	v, err := a.Open(0, len(zero))
	require.NoError(t, err)
	return v
}

func openList(t *testing.T, lt ListType, opts ...host.MemOption) *List {
	t.Helper()
	l, err := lt.Open(openType(t, lt, opts...))
	require.NoError(t, err)
	return l
}

func listContents(t *testing.T, l *List) []byte {
	t.Helper()
	items, err := l.Owned()
	require.NoError(t, err)
	out := make([]byte, 0, len(items))
	for _, it := range items {
		require.Len(t, it, 1)
		out = append(out, it[0])
	}
	return out
}

func TestListRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name  string
		items []byte
	}{
		{"empty", nil},
		{"one", []byte{42}},
		{"many", []byte{1, 2, 3, 4, 5, 6, 7}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := openList(t, ListType{Item: U8, Width: W8})
			require.NoError(t, l.InsertRaw(0, tc.items))
			assert.Equal(t, append([]byte{}, tc.items...), listContents(t, l))

			n, err := l.Len()
			require.NoError(t, err)
			assert.Equal(t, len(tc.items), n)
		})
	}
}

func TestListExampleScenario(t *testing.T) {
	lt := ListType{Item: U8, Width: W8}
	zero := lt.AppendZero(nil)
	h := host.NewMem(zero, host.WithCapacity(8))
	a := arena.New(h)
	v, err := a.Open(0, len(zero))
	require.NoError(t, err)
	l, err := lt.Open(v)
	require.NoError(t, err)

	require.NoError(t, l.InsertAll(0, []byte{10}, []byte{11}, []byte{12}))
	require.NoError(t, l.Insert(1, []byte{99}))

	assert.Equal(t, []byte{10, 99, 11, 12}, listContents(t, l))
	assert.Equal(t, byte(4), h.Bytes()[0], "stored length byte")

	require.NoError(t, l.RemoveRange(1, 3))
	assert.Equal(t, []byte{10, 12}, listContents(t, l))
	assert.Equal(t, byte(2), h.Bytes()[0])
}

func TestListAgainstReferenceModel(t *testing.T) {
	l := openList(t, ListType{Item: U8, Width: W16})
	rng := rand.New(rand.NewSource(1))
	var model []byte

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(6); op {
		case 0: // push
			v := byte(rng.Intn(256))
			require.NoError(t, l.Push([]byte{v}))
			model = append(model, v)
		case 1: // insert
			i := rng.Intn(len(model) + 1)
			v := byte(rng.Intn(256))
			require.NoError(t, l.Insert(i, []byte{v}))
			model = append(model[:i], append([]byte{v}, model[i:]...)...)
		case 2: // insert_all
			i := rng.Intn(len(model) + 1)
			chunk := make([]byte, rng.Intn(4))
			rng.Read(chunk)
			require.NoError(t, l.InsertRaw(i, chunk))
			model = append(model[:i], append(append([]byte{}, chunk...), model[i:]...)...)
		case 3: // remove
			if len(model) == 0 {
				continue
			}
			i := rng.Intn(len(model))
			got, err := l.Remove(i)
			require.NoError(t, err)
			assert.Equal(t, model[i], got[0])
			model = append(model[:i], model[i+1:]...)
		case 4: // remove_range
			if len(model) == 0 {
				continue
			}
			i := rng.Intn(len(model))
			j := i + rng.Intn(len(model)-i+1)
			require.NoError(t, l.RemoveRange(i, j))
			model = append(model[:i], model[j:]...)
		case 5: // pop
			if len(model) == 0 {
				continue
			}
			got, err := l.Pop()
			require.NoError(t, err)
			assert.Equal(t, model[len(model)-1], got[0])
			model = model[:len(model)-1]
		}
	}

	assert.Equal(t, append([]byte{}, model...), listContents(t, l))
}

func TestListBoundsErrors(t *testing.T) {
	l := openList(t, ListType{Item: U8, Width: W8})
	require.NoError(t, l.InsertRaw(0, []byte{1, 2, 3}))

	assert.ErrorIs(t, l.Insert(4, []byte{0}), ErrOutOfBounds)
	assert.ErrorIs(t, l.RemoveRange(1, 4), ErrOutOfBounds)
	assert.ErrorIs(t, l.RemoveRange(-1, 2), ErrOutOfBounds)
	assert.ErrorIs(t, l.Set(3, []byte{0}), ErrOutOfBounds)
	_, err := l.Item(3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorIs(t, l.Push([]byte{1, 2}), ErrItemSize)
}

func TestWidthMax(t *testing.T) {
	assert.Equal(t, 255, W8.Max())
	assert.Equal(t, 65535, W16.Max())
	assert.Positive(t, W32.Max())
	assert.GreaterOrEqual(t, W32.Max(), math.MaxInt32)
}

func TestListLengthOverflow(t *testing.T) {
	l := openList(t, ListType{Item: U8, Width: W8})
	require.NoError(t, l.InsertRaw(0, make([]byte, 255)))
	assert.ErrorIs(t, l.Push([]byte{0}), ErrLengthOverflow)

	n, err := l.Len()
	require.NoError(t, err)
	assert.Equal(t, 255, n, "failed push must not change the list")
}

func TestListCheckedItems(t *testing.T) {
	l := openList(t, ListType{Item: Bool, Width: W8})
	require.NoError(t, l.Push([]byte{1}))
	assert.ErrorIs(t, l.Push([]byte{2}), ErrBitPattern)

	// A corrupt buffer fails on open, not on access.
	bad := host.NewMem([]byte{1, 7})
	a := arena.New(bad)
	v, err := a.Open(0, 2)
	require.NoError(t, err)
	_, err = ListType{Item: Bool, Width: W8}.Open(v)
	assert.ErrorIs(t, err, ErrBitPattern)
}

func TestListGrowthLimitAtomicity(t *testing.T) {
	l := openList(t, ListType{Item: U32, Width: W8}, host.WithMaxGrowth(8))
	require.NoError(t, l.InsertAll(0, []byte{1, 0, 0, 0}, []byte{2, 0, 0, 0}))

	view := l.View()
	before := make([]byte, view.Len())
	b, err := view.Bytes()
	require.NoError(t, err)
	copy(before, b)

	// Three items need 12 bytes, over the 8-byte growth limit.
	err = l.InsertAll(1, []byte{3, 0, 0, 0}, []byte{4, 0, 0, 0}, []byte{5, 0, 0, 0})
	require.ErrorIs(t, err, host.ErrGrowthLimit)

	after, err := view.Bytes()
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed growth must leave the buffer byte-for-byte intact")
}

func TestListFind(t *testing.T) {
	l := openList(t, ListType{Item: U8, Width: W8})
	require.NoError(t, l.InsertRaw(0, []byte{10, 20, 30, 40}))

	cmpTo := func(target byte) func([]byte) int {
		return func(item []byte) int { return int(target) - int(item[0]) }
	}

	i, found, err := l.Find(cmpTo(30))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, i)

	i, found, err = l.Find(cmpTo(25))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, i, "insertion point for a missing target")

	i, found, err = l.Find(cmpTo(50))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 4, i)
}

func TestListOpenRejectsTrailing(t *testing.T) {
	h := host.NewMem([]byte{1, 42, 99})
	a := arena.New(h)
	v, err := a.Open(0, 3)
	require.NoError(t, err)
	_, err = ListType{Item: U8, Width: W8}.Open(v)
	assert.ErrorIs(t, err, ErrTrailing)
}
