// Package account binds a typed slab structure to a real storage buffer. A
// fixed-width discriminant is prefixed to the buffer and checked before any
// view is constructed, so a caller can never reinterpret one account type's
// bytes as another's.
package account

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/arena"
	"github.com/joshuapare/slabkit/slab/host"
)

// DiscriminantSize is the width of the type tag prefixed to every buffer.
const DiscriminantSize = 8

// Discriminant is the fixed-width type tag.
type Discriminant [DiscriminantSize]byte

// DiscriminantOf derives a tag from a type name. Distinct names yield
// distinct tags with overwhelming probability.
func DiscriminantOf(name string) Discriminant {
	sum := sha256.Sum256([]byte("account:" + name))
	var d Discriminant
	copy(d[:], sum[:DiscriminantSize])
	return d
}

var (
	// ErrDiscriminant indicates the buffer's type tag does not match the
	// caller's expectation.
	ErrDiscriminant = errors.New("account: discriminant mismatch")

	// ErrNotEmpty indicates Create was handed a buffer that already holds
	// data.
	ErrNotEmpty = errors.New("account: buffer not empty")
)

// Account is an exclusive binding of a typed structure to one buffer for
// the duration of one access. Its root view is the top of the open-view
// chain; every structural edit anywhere below it reports back through the
// arena engine.
type Account struct {
	a    *arena.Arena
	root *arena.View
}

// Create initializes an empty buffer with the discriminant and the zero
// value of t, then opens it. The host's growth limit applies to the initial
// sizing.
func Create(h host.Buffer, d Discriminant, t slab.Type) (*Account, error) {
	if len(h.Bytes()) != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotEmpty, len(h.Bytes()))
	}
	payload := t.AppendZero(nil)
	if err := h.Resize(DiscriminantSize + len(payload)); err != nil {
		return nil, err
	}
	b := h.Bytes()
	copy(b, d[:])
	copy(b[DiscriminantSize:], payload)
	return open(h, d, t)
}

// Open validates the discriminant and the payload encoding, then returns
// the account with its root view over the payload.
func Open(h host.Buffer, d Discriminant, t slab.Type) (*Account, error) {
	return open(h, d, t)
}

func open(h host.Buffer, d Discriminant, t slab.Type) (*Account, error) {
	b := h.Bytes()
	if len(b) < DiscriminantSize {
		return nil, fmt.Errorf("account header: %w", slab.ErrTruncated)
	}
	if !bytes.Equal(b[:DiscriminantSize], d[:]) {
		return nil, fmt.Errorf("%w: have %x, want %x", ErrDiscriminant, b[:DiscriminantSize], d[:])
	}
	n, err := t.Consumed(b[DiscriminantSize:])
	if err != nil {
		return nil, err
	}
	if n != len(b)-DiscriminantSize {
		return nil, fmt.Errorf("account: %d of %d payload bytes consumed: %w",
			n, len(b)-DiscriminantSize, slab.ErrTrailing)
	}
	a := arena.New(h)
	root, err := a.Open(DiscriminantSize, len(b)-DiscriminantSize)
	if err != nil {
		return nil, err
	}
	return &Account{a: a, root: root}, nil
}

// Peek reads the discriminant without constructing a view, for callers that
// dispatch on the tag.
func Peek(h host.Buffer) (Discriminant, error) {
	b := h.Bytes()
	if len(b) < DiscriminantSize {
		return Discriminant{}, fmt.Errorf("account header: %w", slab.ErrTruncated)
	}
	var d Discriminant
	copy(d[:], b)
	return d, nil
}

// Root returns the view over the payload, immediately after the
// discriminant. Typed handles are opened on it.
func (acct *Account) Root() *arena.View { return acct.root }

// Arena returns the arena coordinating the account's open views.
func (acct *Account) Arena() *arena.Arena { return acct.a }
