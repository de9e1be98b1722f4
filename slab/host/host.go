// Package host defines the byte-buffer capability that backs a slab: a
// mutable byte region whose logical length the host can move, subject to a
// per-call growth limit. Everything above this package treats the buffer as
// the single source of truth for the bytes; nothing here understands the
// layout of what is stored inside.
package host

import "errors"

const (
	// DefaultMaxGrowth is the default per-call growth bound in bytes.
	DefaultMaxGrowth = 10 * 1024

	// DefaultCapacity is the default absolute size bound in bytes.
	DefaultCapacity = 10 * 1024 * 1024
)

var (
	// ErrGrowthLimit indicates a resize request exceeded the per-call
	// growth bound or the absolute capacity. The buffer is unchanged.
	ErrGrowthLimit = errors.New("host: growth limit exceeded")

	// ErrBadLength indicates a negative requested length.
	ErrBadLength = errors.New("host: negative length")
)

// Buffer is the capability handed to the slab engine. Bytes returns the
// current logical contents (len equals the logical length); Resize moves the
// logical length, after which Bytes reflects the new layout. A failed Resize
// mutates nothing.
type Buffer interface {
	Bytes() []byte
	Resize(newLen int) error
	MaxGrowth() int
}
