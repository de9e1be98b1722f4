package slab

import (
	"fmt"

	"github.com/joshuapare/slabkit/slab/arena"
)

// PairType is the concatenation of two typed regions with no stored
// separator. The boundary is derived, not stored: the first type is decoded
// and the second starts at whatever offset it consumed.
type PairType struct {
	First  Type
	Second Type
}

// Consumed decodes First, then Second immediately after it.
func (t PairType) Consumed(b []byte) (int, error) {
	n1, err := t.First.Consumed(b)
	if err != nil {
		return 0, fmt.Errorf("pair first: %w", err)
	}
	n2, err := t.Second.Consumed(b[n1:])
	if err != nil {
		return 0, fmt.Errorf("pair second: %w", err)
	}
	return n1 + n2, nil
}

// AppendZero appends the zero value of First followed by Second's.
func (t PairType) AppendZero(dst []byte) []byte {
	return t.Second.AppendZero(t.First.AppendZero(dst))
}

// Open validates that v spans exactly one pair encoding and returns a
// mutable handle with a registered child view per half. Because the children
// stay registered, resizing inside the first half shifts the second half's
// view without the caller re-opening it.
func (t PairType) Open(v *arena.View) (*Pair, error) {
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	n1, err := t.First.Consumed(b)
	if err != nil {
		return nil, fmt.Errorf("pair first: %w", err)
	}
	n2, err := t.Second.Consumed(b[n1:])
	if err != nil {
		return nil, fmt.Errorf("pair second: %w", err)
	}
	if n1+n2 != len(b) {
		return nil, fmt.Errorf("pair: %d of %d bytes consumed: %w", n1+n2, len(b), ErrTrailing)
	}
	first, err := v.Sub(0, n1)
	if err != nil {
		return nil, err
	}
	second, err := v.Sub(n1, n2)
	if err != nil {
		first.Release()
		return nil, err
	}
	return &Pair{t: t, v: v, first: first, second: second}, nil
}

// Pair is a mutable handle over one concatenation.
type Pair struct {
	t             PairType
	v             *arena.View
	first, second *arena.View
}

// View returns the view spanning the whole pair.
func (p *Pair) View() *arena.View { return p.v }

// First returns the view over the first half. Open a typed handle on it to
// edit the contents.
func (p *Pair) First() *arena.View { return p.first }

// Second returns the view over the second half.
func (p *Pair) Second() *arena.View { return p.second }

// ResizeFirst sets the first half's byte length. Growth asks the host first
// and then shifts the second half forward; shrinking moves the second half
// back before the buffer shrinks. Either way the second half's view stays
// addressable.
func (p *Pair) ResizeFirst(newLen int) error {
	if newLen < 0 {
		return fmt.Errorf("pair first length %d: %w", newLen, ErrOutOfBounds)
	}
	old := p.first.Len()
	switch {
	case newLen > old:
		return p.first.InsertAt(old, newLen-old)
	case newLen < old:
		return p.first.RemoveAt(newLen, old-newLen)
	default:
		return nil
	}
}

// ResizeSecond sets the second half's byte length by extending or truncating
// the pair's tail. The first half never moves.
func (p *Pair) ResizeSecond(newLen int) error {
	if newLen < 0 {
		return fmt.Errorf("pair second length %d: %w", newLen, ErrOutOfBounds)
	}
	old := p.second.Len()
	switch {
	case newLen > old:
		return p.second.InsertAt(old, newLen-old)
	case newLen < old:
		return p.second.RemoveAt(newLen, old-newLen)
	default:
		return nil
	}
}
