// Package arena tracks views over a host-resizable byte buffer and fixes
// them up whenever bytes are inserted or removed.
//
// Every structural edit funnels through Insert or Remove. Both perform the
// byte move, ask the host capability to update the logical length, and then
// walk the chain of open views so cached offsets and lengths stay correct:
// the source view and its ancestors change length, views past the edit shift,
// and views inside a removed span are invalidated. A view is never a raw
// pointer: it is a (start, length) pair plus a generation stamp checked on
// every access, so anything left behind by a resize fails loudly with
// ErrStale instead of reading relocated bytes.
package arena

import (
	"errors"
	"fmt"

	"github.com/joshuapare/slabkit/internal/buf"
	"github.com/joshuapare/slabkit/slab/host"
)

var (
	// ErrStale indicates a view whose region was relocated or removed by a
	// resize it was not fixed up for. Re-derive the view from its parent.
	ErrStale = errors.New("arena: stale view")

	// ErrRange indicates an offset or span outside the addressed region.
	ErrRange = errors.New("arena: range out of bounds")
)

// Arena owns the open-view chain for one buffer access.
type Arena struct {
	host  host.Buffer
	data  []byte // alias of host.Bytes(), refreshed after every resize
	gen   uint64
	views []*View
}

// New binds an arena to a host buffer for the duration of one access.
func New(h host.Buffer) *Arena {
	return &Arena{host: h, data: h.Bytes(), gen: 1}
}

// Len returns the buffer's current logical length.
func (a *Arena) Len() int { return len(a.data) }

// Gen returns the current generation stamp. It advances on every
// length-changing edit.
func (a *Arena) Gen() uint64 { return a.gen }

// Open registers a top-level view over [start, start+length).
func (a *Arena) Open(start, length int) (*View, error) {
	return a.open(nil, start, length)
}

func (a *Arena) open(parent *View, start, length int) (*View, error) {
	if !buf.Has(a.data, start, length) {
		return nil, fmt.Errorf("%w: [%d, %d) in %d bytes", ErrRange, start, start+length, len(a.data))
	}
	v := &View{a: a, parent: parent, start: start, length: length, gen: a.gen, open: true}
	a.views = append(a.views, v)
	return v, nil
}

// ResizeHook is called on a view after a resize sourced strictly below it
// has been applied and all view fixups are done. at is the absolute offset
// of the edit and delta its signed byte count. Containers that store
// metadata about their children (counts, offsets) use it to repair those
// bytes.
type ResizeHook func(at, delta int) error

// View is a transient handle over a sub-range of the arena's buffer. Open
// views are fixed up by every resize; released or read-only views are not
// and go stale instead.
type View struct {
	a        *Arena
	parent   *View
	start    int
	length   int
	gen      uint64
	open     bool
	onResize ResizeHook
}

// SetOnResize installs the view's descendant-resize hook.
func (v *View) SetOnResize(fn ResizeHook) { v.onResize = fn }

// Start returns the view's current absolute offset.
func (v *View) Start() int { return v.start }

// Len returns the view's current length in bytes.
func (v *View) Len() int { return v.length }

// Valid reports whether the view still reflects the buffer's layout.
func (v *View) Valid() bool { return v.gen == v.a.gen }

// Bytes returns the viewed region. The slice aliases the buffer and must not
// be held across a resize.
func (v *View) Bytes() ([]byte, error) {
	if !v.Valid() {
		return nil, ErrStale
	}
	b, ok := buf.Slice(v.a.data, v.start, v.length)
	if !ok {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrRange, v.start, v.start+v.length)
	}
	return b, nil
}

// Sub registers a child view over [off, off+n) relative to v.
func (v *View) Sub(off, n int) (*View, error) {
	if !v.Valid() {
		return nil, ErrStale
	}
	if !buf.Has(v.a.data[v.start:v.start+v.length], off, n) {
		return nil, fmt.Errorf("%w: sub [%d, %d) in %d bytes", ErrRange, off, off+n, v.length)
	}
	return v.a.open(v, v.start+off, n)
}

// ReadOnly derives an unregistered view over [off, off+n) relative to v. It
// is not fixed up by resizes: the first structural edit after its creation
// makes it stale, forcing a re-derive.
func (v *View) ReadOnly(off, n int) (*View, error) {
	if !v.Valid() {
		return nil, ErrStale
	}
	if !buf.Has(v.a.data[v.start:v.start+v.length], off, n) {
		return nil, fmt.Errorf("%w: sub [%d, %d) in %d bytes", ErrRange, off, off+n, v.length)
	}
	return &View{a: v.a, parent: v, start: v.start + off, length: n, gen: v.a.gen}, nil
}

// InsertAt grows the buffer by n bytes at offset off relative to v, with v
// as the resize source.
func (v *View) InsertAt(off, n int) error {
	return v.a.Insert(v, v.start+off, n)
}

// RemoveAt deletes [off, off+n) relative to v, with v as the resize source.
func (v *View) RemoveAt(off, n int) error {
	return v.a.Remove(v, v.start+off, n)
}

// Arena returns the arena the view belongs to.
func (v *View) Arena() *Arena { return v.a }

// Release unregisters the view. Further accesses fail after the next resize.
func (v *View) Release() {
	if !v.open {
		return
	}
	v.open = false
	v.a.unregister(v)
}

func (a *Arena) unregister(v *View) {
	for i, w := range a.views {
		if w == v {
			a.views = append(a.views[:i], a.views[i+1:]...)
			return
		}
	}
}

func ancestorOf(v, of *View) bool {
	for p := of.parent; p != nil; p = p.parent {
		if p == v {
			return true
		}
	}
	return false
}

// Insert grows the buffer by n bytes at absolute offset at, on behalf of
// src. The insertion point must lie within src's span (inclusive of its
// end). The host is asked to grow first; if it refuses, nothing moves and
// every view is left untouched. On success the trailing bytes shift forward,
// the inserted span reads as zero, src and its ancestors gain n bytes of
// length, and every other open view at or past the insertion point shifts.
func (a *Arena) Insert(src *View, at, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative insert %d", ErrRange, n)
	}
	if src != nil && !src.Valid() {
		return ErrStale
	}
	lo, hi := 0, len(a.data)
	if src != nil {
		lo, hi = src.start, src.start+src.length
	}
	if at < lo || at > hi {
		return fmt.Errorf("%w: insert at %d outside [%d, %d]", ErrRange, at, lo, hi)
	}
	if n == 0 {
		return nil
	}
	oldLen := len(a.data)
	newLen, ok := buf.AddOK(oldLen, n)
	if !ok {
		return fmt.Errorf("%w: length overflow", ErrRange)
	}
	if err := a.host.Resize(newLen); err != nil {
		return err
	}
	a.data = a.host.Bytes()
	copy(a.data[at+n:], a.data[at:oldLen])
	clear(a.data[at : at+n])

	a.gen++
	for _, v := range a.views {
		switch {
		case v == src || (src != nil && ancestorOf(v, src)):
			v.length += n
		case v.start >= at:
			v.start += n
		case at < v.start+v.length:
			// Edit lands inside a view that is not on the source's
			// ancestor chain. Its span absorbs the new bytes.
			v.length += n
		}
		v.gen = a.gen
	}
	return a.runHooks(src, at, n)
}

// runHooks notifies every ancestor of src that stored metadata may need
// repair. Fixups are already complete, so hooks see the final layout.
func (a *Arena) runHooks(src *View, at, delta int) error {
	if src == nil {
		return nil
	}
	for _, v := range a.views {
		if v.onResize == nil || v == src || !ancestorOf(v, src) {
			continue
		}
		if err := v.onResize(at, delta); err != nil {
			return err
		}
	}
	return nil
}

// Remove shrinks the buffer by deleting [at, at+n), on behalf of src. The
// span must lie within src's span. Trailing bytes move back first, then the
// host shrinks. src and its ancestors lose n bytes of length, later views
// shift back, and any open view lying inside the removed span is
// invalidated.
func (a *Arena) Remove(src *View, at, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative remove %d", ErrRange, n)
	}
	if src != nil && !src.Valid() {
		return ErrStale
	}
	lo, hi := 0, len(a.data)
	if src != nil {
		lo, hi = src.start, src.start+src.length
	}
	if at < lo || at+n > hi {
		return fmt.Errorf("%w: remove [%d, %d) outside [%d, %d]", ErrRange, at, at+n, lo, hi)
	}
	if n == 0 {
		return nil
	}
	oldLen := len(a.data)
	end := at + n
	copy(a.data[at:], a.data[end:oldLen])
	if err := a.host.Resize(oldLen - n); err != nil {
		return err
	}
	a.data = a.host.Bytes()

	a.gen++
	survivors := a.views[:0]
	for _, v := range a.views {
		switch {
		case v == src || (src != nil && ancestorOf(v, src)):
			v.length -= n
		case v.start >= end:
			v.start -= n
		case v.start >= at && v.start+v.length <= end:
			// Whole view removed: leave it stale.
			v.open = false
			continue
		case v.start <= at && v.start+v.length >= end:
			// Strictly contains the removed span, mirroring the Insert
			// case for an edit inside a non-ancestor view.
			v.length -= n
		case v.start+v.length <= at:
			// Entirely before the edit.
		default:
			// Straddles a boundary of the removed span without being an
			// ancestor. There is no correct fixup; invalidate it.
			v.open = false
			continue
		}
		v.gen = a.gen
		survivors = append(survivors, v)
	}
	a.views = survivors
	return a.runHooks(src, at, -n)
}
