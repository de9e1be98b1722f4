package slab

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/slabkit/internal/buf"
	"github.com/joshuapare/slabkit/slab/arena"
)

// offsetSize is the width of the payload offset stored in each index entry.
const offsetSize = 4

// MapType is an ordered map from a fixed-width key to a variable-length
// value:
//
//	[index: List of (offset: u32, key)][payload: List of bytes]
//
// The index is kept sorted strictly ascending by raw key bytes, enabling
// binary search. Each offset addresses the entry's value inside the payload
// region, relative to the payload's first content byte. Payload values are
// kept in key order, so offsets ascend with keys.
type MapType struct {
	Key   Fixed
	Value Type
}

func (t MapType) entrySize() int { return offsetSize + t.Key.Size }

func (t MapType) indexType() ListType {
	return ListType{Item: Fixed{Size: t.entrySize()}, Width: W32}
}

func (t MapType) payloadType() ListType {
	return ListType{Item: U8, Width: W32}
}

// Consumed decodes the index and payload regions and validates the map
// invariants: valid key bit patterns, strictly ascending keys and offsets,
// and every offset resolving to a well-formed value inside the payload.
func (t MapType) Consumed(b []byte) (int, error) {
	n1, err := t.indexType().Consumed(b)
	if err != nil {
		return 0, fmt.Errorf("map index: %w", err)
	}
	n2, err := t.payloadType().Consumed(b[n1:])
	if err != nil {
		return 0, fmt.Errorf("map payload: %w", err)
	}
	idx := b[int(W32):n1]
	payload := b[n1+int(W32) : n1+n2]
	var prevKey []byte
	prevOff := 0
	for e := 0; e < len(idx); e += t.entrySize() {
		off := int(buf.U32LE(idx[e:]))
		key := idx[e+offsetSize : e+t.entrySize()]
		if t.Key.Check != nil {
			if err := t.Key.Check(key); err != nil {
				return 0, fmt.Errorf("map key: %w: %v", ErrBitPattern, err)
			}
		}
		if prevKey != nil && bytes.Compare(prevKey, key) >= 0 {
			return 0, fmt.Errorf("map keys not strictly ascending at entry %d: %w", e/t.entrySize(), ErrBitPattern)
		}
		if off < prevOff {
			return 0, fmt.Errorf("map offsets not ascending at entry %d: %w", e/t.entrySize(), ErrBitPattern)
		}
		if off > len(payload) {
			return 0, fmt.Errorf("map offset %d beyond payload %d: %w", off, len(payload), ErrTruncated)
		}
		if _, err := t.Value.Consumed(payload[off:]); err != nil {
			return 0, fmt.Errorf("map value at %d: %w", off, err)
		}
		prevKey, prevOff = key, off
	}
	return n1 + n2, nil
}

// AppendZero appends an empty map (empty index, empty payload).
func (t MapType) AppendZero(dst []byte) []byte {
	return t.payloadType().AppendZero(t.indexType().AppendZero(dst))
}

// Open validates that v spans exactly one map encoding and returns a
// mutable handle.
func (t MapType) Open(v *arena.View) (*Map, error) {
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	n, err := t.Consumed(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, fmt.Errorf("map: %d of %d bytes consumed: %w", n, len(b), ErrTrailing)
	}
	n1, err := t.indexType().Consumed(b)
	if err != nil {
		return nil, err
	}
	iv, err := v.Sub(0, n1)
	if err != nil {
		return nil, err
	}
	pv, err := v.Sub(n1, len(b)-n1)
	if err != nil {
		iv.Release()
		return nil, err
	}
	idx, err := t.indexType().Open(iv)
	if err != nil {
		return nil, err
	}
	pay, err := t.payloadType().Open(pv)
	if err != nil {
		return nil, err
	}
	m := &Map{t: t, v: v, idx: idx, pay: pay}
	// Value views handed out by GetMut sit below the payload view, so an
	// in-place value resize reaches us here after the engine's fixups. The
	// payload's stored byte count and the index offsets past the edit are
	// ours to repair.
	pv.SetOnResize(m.onValueResize)
	return m, nil
}

// onValueResize repairs stored metadata after a resize inside one of the
// map's values: the payload list's length field absorbs the delta, and
// every index entry whose value starts at or after the edit shifts.
func (m *Map) onValueResize(at, delta int) error {
	pb, err := m.pay.View().Bytes()
	if err != nil {
		return err
	}
	W32.put(pb, W32.read(pb)+delta)

	contentStart := m.pay.View().Start() + int(W32)
	threshold := at
	if delta < 0 {
		threshold = at - delta
	}
	count, err := m.idx.Len()
	if err != nil {
		return err
	}
	for j := 0; j < count; j++ {
		entry, err := m.idx.Item(j)
		if err != nil {
			return err
		}
		if off := int(buf.U32LE(entry)); contentStart+off >= threshold {
			buf.PutU32LE(entry, 0, uint32(off+delta))
		}
	}
	return nil
}

// Map is a mutable handle over one ordered-map encoding.
type Map struct {
	t   MapType
	v   *arena.View
	idx *List
	pay *List
}

// View returns the view spanning the whole map.
func (m *Map) View() *arena.View { return m.v }

// Len returns the number of entries.
func (m *Map) Len() (int, error) { return m.idx.Len() }

func (m *Map) checkKey(key []byte) error {
	if len(key) != m.t.Key.Size {
		return fmt.Errorf("map key %d bytes, want %d: %w", len(key), m.t.Key.Size, ErrItemSize)
	}
	if m.t.Key.Check != nil {
		if err := m.t.Key.Check(key); err != nil {
			return fmt.Errorf("%w: %v", ErrBitPattern, err)
		}
	}
	return nil
}

func (m *Map) find(key []byte) (int, bool, error) {
	return m.idx.Find(func(entry []byte) int {
		return bytes.Compare(key, entry[offsetSize:])
	})
}

// valueSpan resolves entry i to its value's byte range inside the payload
// content region.
func (m *Map) valueSpan(i int) (off, n int, err error) {
	entry, err := m.idx.Item(i)
	if err != nil {
		return 0, 0, err
	}
	off = int(buf.U32LE(entry))
	pb, err := m.pay.View().Bytes()
	if err != nil {
		return 0, 0, err
	}
	content := pb[int(W32):]
	if off > len(content) {
		return 0, 0, fmt.Errorf("map offset %d beyond payload %d: %w", off, len(content), ErrOutOfBounds)
	}
	n, err = m.t.Value.Consumed(content[off:])
	if err != nil {
		return 0, 0, fmt.Errorf("map value at %d: %w", off, err)
	}
	return off, n, nil
}

// Get resolves key to a read-only view of its value. The view goes stale on
// the next structural edit; re-derive it after mutating.
func (m *Map) Get(key []byte) (*arena.View, bool, error) {
	if err := m.checkKey(key); err != nil {
		return nil, false, err
	}
	i, found, err := m.find(key)
	if err != nil || !found {
		return nil, false, err
	}
	off, n, err := m.valueSpan(i)
	if err != nil {
		return nil, false, err
	}
	v, err := m.pay.View().ReadOnly(int(W32)+off, n)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetMut resolves key to a registered view of its value. The engine keeps
// the view correct across later edits elsewhere in the buffer.
func (m *Map) GetMut(key []byte) (*arena.View, bool, error) {
	if err := m.checkKey(key); err != nil {
		return nil, false, err
	}
	i, found, err := m.find(key)
	if err != nil || !found {
		return nil, false, err
	}
	off, n, err := m.valueSpan(i)
	if err != nil {
		return nil, false, err
	}
	v, err := m.pay.View().Sub(int(W32)+off, n)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Insert stores value under key, returning whether the key was newly
// inserted. Replacing an existing key removes the old entry and payload
// before inserting the new ones, so both land at fresh positions; a
// replacement value may have a different serialized length. If the new
// value's growth is rejected after the old entry was removed, the old entry
// is put back, so a failed replacement never loses data.
func (m *Map) Insert(key, value []byte) (bool, error) {
	if err := m.checkKey(key); err != nil {
		return false, err
	}
	vn, err := m.t.Value.Consumed(value)
	if err != nil {
		return false, fmt.Errorf("map value: %w", err)
	}
	if vn != len(value) {
		return false, fmt.Errorf("map value %d of %d bytes consumed: %w", vn, len(value), ErrTrailing)
	}
	i, found, err := m.find(key)
	if err != nil {
		return false, err
	}
	var old []byte
	if found {
		off, n, err := m.valueSpan(i)
		if err != nil {
			return false, err
		}
		pb, err := m.pay.View().Bytes()
		if err != nil {
			return false, err
		}
		old = append([]byte(nil), pb[int(W32)+off:int(W32)+off+n]...)
		if err := m.removeAt(i); err != nil {
			return false, err
		}
	}
	if err := m.insertAt(i, key, value); err != nil {
		if found {
			if rerr := m.insertAt(i, key, old); rerr != nil {
				return false, fmt.Errorf("map replace: %w (restore: %v)", err, rerr)
			}
		}
		return false, err
	}
	return !found, nil
}

// insertAt writes a new entry and its value at index i. The payload grows
// first; a rejected index growth rolls the payload back so the map is left
// exactly as it was.
func (m *Map) insertAt(i int, key, value []byte) error {
	count, err := m.idx.Len()
	if err != nil {
		return err
	}
	var valOff int
	if i < count {
		entry, err := m.idx.Item(i)
		if err != nil {
			return err
		}
		valOff = int(buf.U32LE(entry))
	} else {
		payCount, err := m.pay.Len()
		if err != nil {
			return err
		}
		valOff = payCount
	}
	if err := m.pay.InsertRaw(valOff, value); err != nil {
		return err
	}
	entry := make([]byte, m.t.entrySize())
	buf.PutU32LE(entry, 0, uint32(valOff))
	copy(entry[offsetSize:], key)
	if err := m.idx.InsertRaw(i, entry); err != nil {
		if rerr := m.pay.RemoveRange(valOff, valOff+len(value)); rerr != nil {
			return fmt.Errorf("map index insert: %w (payload rollback: %v)", err, rerr)
		}
		return err
	}
	return m.shiftOffsets(i+1, len(value))
}

// Remove deletes key and its value, reporting whether anything was removed.
func (m *Map) Remove(key []byte) (bool, error) {
	if err := m.checkKey(key); err != nil {
		return false, err
	}
	i, found, err := m.find(key)
	if err != nil || !found {
		return false, err
	}
	if err := m.removeAt(i); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Map) removeAt(i int) error {
	off, n, err := m.valueSpan(i)
	if err != nil {
		return err
	}
	if err := m.pay.RemoveRange(off, off+n); err != nil {
		return err
	}
	if err := m.idx.RemoveRange(i, i+1); err != nil {
		return err
	}
	return m.shiftOffsets(i, -n)
}

// shiftOffsets adds delta to the stored payload offset of every entry at or
// after index from. Entries before the edit keep their offsets; the payload
// region is key-ordered, so exactly the trailing entries moved.
func (m *Map) shiftOffsets(from, delta int) error {
	count, err := m.idx.Len()
	if err != nil {
		return err
	}
	for j := from; j < count; j++ {
		entry, err := m.idx.Item(j)
		if err != nil {
			return err
		}
		buf.PutU32LE(entry, 0, uint32(int(buf.U32LE(entry))+delta))
	}
	return nil
}

// Keys copies every key out in ascending order.
func (m *Map) Keys() ([][]byte, error) {
	entries, err := m.idx.Owned()
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(entries))
	for i, e := range entries {
		keys[i] = e[offsetSize:]
	}
	return keys, nil
}

// Entry is one owned key/value pair.
type Entry struct {
	Key   []byte
	Value []byte
}

// Entries copies every entry out in ascending key order.
func (m *Map) Entries() ([]Entry, error) {
	count, err := m.idx.Len()
	if err != nil {
		return nil, err
	}
	pb, err := m.pay.View().Bytes()
	if err != nil {
		return nil, err
	}
	content := pb[int(W32):]
	out := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		entry, err := m.idx.Item(i)
		if err != nil {
			return nil, err
		}
		off, n, err := m.valueSpan(i)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Key:   append([]byte(nil), entry[offsetSize:]...),
			Value: append([]byte(nil), content[off:off+n]...),
		})
	}
	return out, nil
}
