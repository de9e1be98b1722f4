package host

import "fmt"

// MemBuffer is an in-memory Buffer with a per-call growth limit and an
// absolute capacity, mimicking a host that owns the storage region.
type MemBuffer struct {
	data      []byte
	maxGrowth int
	capacity  int
}

// MemOption configures a MemBuffer.
type MemOption func(*MemBuffer)

// WithMaxGrowth sets the per-call growth bound.
func WithMaxGrowth(n int) MemOption {
	return func(b *MemBuffer) { b.maxGrowth = n }
}

// WithCapacity sets the absolute size bound.
func WithCapacity(n int) MemOption {
	return func(b *MemBuffer) { b.capacity = n }
}

// NewMem returns a MemBuffer seeded with a copy of initial.
func NewMem(initial []byte, opts ...MemOption) *MemBuffer {
	b := &MemBuffer{
		data:      append([]byte(nil), initial...),
		maxGrowth: DefaultMaxGrowth,
		capacity:  DefaultCapacity,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bytes returns the logical contents. The slice aliases the buffer's storage
// and is remapped by Resize.
func (b *MemBuffer) Bytes() []byte { return b.data }

// MaxGrowth returns the per-call growth bound.
func (b *MemBuffer) MaxGrowth() int { return b.maxGrowth }

// Resize moves the logical length to newLen. Growth beyond MaxGrowth bytes
// in one call, or beyond the capacity, fails with ErrGrowthLimit and leaves
// the contents untouched. Grown bytes read as zero.
func (b *MemBuffer) Resize(newLen int) error {
	if newLen < 0 {
		return fmt.Errorf("%w: %d", ErrBadLength, newLen)
	}
	if newLen <= len(b.data) {
		b.data = b.data[:newLen]
		return nil
	}
	if grow := newLen - len(b.data); grow > b.maxGrowth {
		return fmt.Errorf("%w: grow %d > %d", ErrGrowthLimit, grow, b.maxGrowth)
	}
	if newLen > b.capacity {
		return fmt.Errorf("%w: length %d > capacity %d", ErrGrowthLimit, newLen, b.capacity)
	}
	if newLen <= cap(b.data) {
		old := len(b.data)
		b.data = b.data[:newLen]
		clear(b.data[old:])
		return nil
	}
	grown := make([]byte, newLen)
	copy(grown, b.data)
	b.data = grown
	return nil
}
