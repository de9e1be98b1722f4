package slab

import (
	"fmt"
	"math"
	"sort"

	"github.com/joshuapare/slabkit/internal/buf"
	"github.com/joshuapare/slabkit/slab/arena"
)

// Width is the byte width of a list's length prefix.
type Width uint8

const (
	W8  Width = 1
	W16 Width = 2
	W32 Width = 4
)

// Max returns the largest item count representable in the width, capped at
// what int can hold on 32-bit platforms.
func (w Width) Max() int {
	switch w {
	case W8:
		return 0xFF
	case W16:
		return 0xFFFF
	case W32:
		limit := uint64(1)<<32 - 1
		if uint64(math.MaxInt) < limit {
			return math.MaxInt
		}
		return int(limit)
	default:
		return 0
	}
}

func (w Width) read(b []byte) int {
	switch w {
	case W8:
		return int(b[0])
	case W16:
		return int(buf.U16LE(b))
	default:
		return int(buf.U32LE(b))
	}
}

func (w Width) put(b []byte, n int) {
	switch w {
	case W8:
		b[0] = byte(n)
	case W16:
		buf.PutU16LE(b, 0, uint16(n))
	default:
		buf.PutU32LE(b, 0, uint32(n))
	}
}

// ListType is a length-prefixed array of fixed-size items:
//
//	[count: uintN][item_0]...[item_{count-1}]
type ListType struct {
	Item  Fixed
	Width Width
}

// Consumed decodes the length prefix, bounds-checks the item region, and
// validates each item's bit pattern when the item type is checked.
func (t ListType) Consumed(b []byte) (int, error) {
	if t.Item.Size <= 0 || t.Width.Max() == 0 {
		return 0, fmt.Errorf("list: bad type (item size %d, width %d)", t.Item.Size, t.Width)
	}
	if len(b) < int(t.Width) {
		return 0, fmt.Errorf("list prefix: %w", ErrTruncated)
	}
	count := t.Width.read(b)
	end, err := buf.CheckCount(len(b), int(t.Width), count, t.Item.Size)
	if err != nil {
		return 0, fmt.Errorf("list of %d: %w", count, ErrTruncated)
	}
	if t.Item.Check != nil {
		for off := int(t.Width); off < end; off += t.Item.Size {
			if err := t.Item.Check(b[off : off+t.Item.Size]); err != nil {
				return 0, fmt.Errorf("list item at %d: %w: %v", off, ErrBitPattern, err)
			}
		}
	}
	return end, nil
}

// AppendZero appends an empty list (a zero length prefix).
func (t ListType) AppendZero(dst []byte) []byte {
	return append(dst, make([]byte, int(t.Width))...)
}

// Open validates that v spans exactly one list encoding and returns a
// mutable handle over it.
func (t ListType) Open(v *arena.View) (*List, error) {
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	n, err := t.Consumed(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, fmt.Errorf("list: %d of %d bytes consumed: %w", n, len(b), ErrTrailing)
	}
	return &List{t: t, v: v}, nil
}

// List is a mutable handle over one list encoding. All length changes go
// through the arena engine, so sibling views opened elsewhere stay correct.
type List struct {
	t ListType
	v *arena.View
}

// View returns the underlying view spanning the whole list.
func (l *List) View() *arena.View { return l.v }

func (l *List) bytes() ([]byte, error) { return l.v.Bytes() }

// Len returns the stored item count.
func (l *List) Len() (int, error) {
	b, err := l.bytes()
	if err != nil {
		return 0, err
	}
	return l.t.Width.read(b), nil
}

func (l *List) itemOff(i int) int { return int(l.t.Width) + i*l.t.Item.Size }

// Item returns the i-th item. The slice aliases the buffer; copy it before
// the next structural edit.
func (l *List) Item(i int) ([]byte, error) {
	b, err := l.bytes()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= l.t.Width.read(b) {
		return nil, fmt.Errorf("list item %d of %d: %w", i, l.t.Width.read(b), ErrOutOfBounds)
	}
	off := l.itemOff(i)
	return b[off : off+l.t.Item.Size], nil
}

// Set overwrites the i-th item in place.
func (l *List) Set(i int, item []byte) error {
	if err := l.checkItem(item); err != nil {
		return err
	}
	dst, err := l.Item(i)
	if err != nil {
		return err
	}
	copy(dst, item)
	return nil
}

// Owned copies every item out of the buffer.
func (l *List) Owned() ([][]byte, error) {
	b, err := l.bytes()
	if err != nil {
		return nil, err
	}
	count := l.t.Width.read(b)
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		off := l.itemOff(i)
		out[i] = append([]byte(nil), b[off:off+l.t.Item.Size]...)
	}
	return out, nil
}

func (l *List) checkItem(item []byte) error {
	if len(item) != l.t.Item.Size {
		return fmt.Errorf("list item %d bytes, want %d: %w", len(item), l.t.Item.Size, ErrItemSize)
	}
	if l.t.Item.Check != nil {
		if err := l.t.Item.Check(item); err != nil {
			return fmt.Errorf("%w: %v", ErrBitPattern, err)
		}
	}
	return nil
}

// InsertRaw inserts pre-serialized items (len(raw) must be a whole number of
// items) before index i. All validation happens before any byte moves, so a
// rejected growth leaves the list untouched.
func (l *List) InsertRaw(i int, raw []byte) error {
	size := l.t.Item.Size
	if len(raw)%size != 0 {
		return fmt.Errorf("list raw %d bytes, item size %d: %w", len(raw), size, ErrItemSize)
	}
	count := len(raw) / size
	if l.t.Item.Check != nil {
		for off := 0; off < len(raw); off += size {
			if err := l.t.Item.Check(raw[off : off+size]); err != nil {
				return fmt.Errorf("%w: %v", ErrBitPattern, err)
			}
		}
	}
	cur, err := l.Len()
	if err != nil {
		return err
	}
	if i < 0 || i > cur {
		return fmt.Errorf("list insert at %d of %d: %w", i, cur, ErrOutOfBounds)
	}
	if cur+count > l.t.Width.Max() {
		return fmt.Errorf("list %d+%d items in %d-byte prefix: %w", cur, count, l.t.Width, ErrLengthOverflow)
	}
	if count == 0 {
		return nil
	}
	if err := l.v.InsertAt(l.itemOff(i), count*size); err != nil {
		return err
	}
	b, err := l.bytes()
	if err != nil {
		return err
	}
	copy(b[l.itemOff(i):], raw)
	l.t.Width.put(b, cur+count)
	return nil
}

// InsertAll inserts items before index i.
func (l *List) InsertAll(i int, items ...[]byte) error {
	raw := make([]byte, 0, len(items)*l.t.Item.Size)
	for _, item := range items {
		if err := l.checkItem(item); err != nil {
			return err
		}
		raw = append(raw, item...)
	}
	return l.InsertRaw(i, raw)
}

// Insert inserts one item before index i.
func (l *List) Insert(i int, item []byte) error { return l.InsertAll(i, item) }

// Push appends one item.
func (l *List) Push(item []byte) error {
	cur, err := l.Len()
	if err != nil {
		return err
	}
	return l.InsertAll(cur, item)
}

// RemoveRange deletes items [i, j). An empty range is a no-op.
func (l *List) RemoveRange(i, j int) error {
	cur, err := l.Len()
	if err != nil {
		return err
	}
	if i < 0 || j < i || j > cur {
		return fmt.Errorf("list remove [%d, %d) of %d: %w", i, j, cur, ErrOutOfBounds)
	}
	n := (j - i) * l.t.Item.Size
	if n == 0 {
		return nil
	}
	if err := l.v.RemoveAt(l.itemOff(i), n); err != nil {
		return err
	}
	b, err := l.bytes()
	if err != nil {
		return err
	}
	l.t.Width.put(b, cur-(j-i))
	return nil
}

// Remove deletes the i-th item and returns a copy of it.
func (l *List) Remove(i int) ([]byte, error) {
	item, err := l.Item(i)
	if err != nil {
		return nil, err
	}
	owned := append([]byte(nil), item...)
	if err := l.RemoveRange(i, i+1); err != nil {
		return nil, err
	}
	return owned, nil
}

// Pop removes and returns a copy of the last item.
func (l *List) Pop() ([]byte, error) {
	cur, err := l.Len()
	if err != nil {
		return nil, err
	}
	if cur == 0 {
		return nil, fmt.Errorf("list pop: %w", ErrOutOfBounds)
	}
	return l.Remove(cur - 1)
}

// Find binary-searches an ascending list. cmp compares the target against an
// item, returning >0 when the target sorts after the item and 0 on a match.
// It returns the smallest index with cmp <= 0 and whether that index is an
// exact match; without a match the index is the insertion point.
func (l *List) Find(cmp func(item []byte) int) (int, bool, error) {
	b, err := l.bytes()
	if err != nil {
		return 0, false, err
	}
	count := l.t.Width.read(b)
	i, found := sort.Find(count, func(i int) int {
		off := l.itemOff(i)
		return cmp(b[off : off+l.t.Item.Size])
	})
	return i, found, nil
}
