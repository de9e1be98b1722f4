package host

import (
	"fmt"

	"github.com/joshuapare/slabkit/internal/mapfile"
)

// FileBuffer is a file-backed Buffer. The file is memory-mapped with the
// capacity reserved up front, so Resize only moves the logical length.
type FileBuffer struct {
	m         *mapfile.File
	maxGrowth int
}

// CreateFile creates a file-backed buffer of size logical bytes with the
// given reserved capacity.
func CreateFile(path string, size, capacity int, opts ...FileOption) (*FileBuffer, error) {
	m, err := mapfile.Create(path, size, capacity)
	if err != nil {
		return nil, err
	}
	return newFileBuffer(m, opts), nil
}

// OpenFile opens an existing file-backed buffer. The file's length becomes
// the logical length.
func OpenFile(path string, capacity int, opts ...FileOption) (*FileBuffer, error) {
	m, err := mapfile.Open(path, capacity)
	if err != nil {
		return nil, err
	}
	return newFileBuffer(m, opts), nil
}

// FileOption configures a FileBuffer.
type FileOption func(*FileBuffer)

// WithFileMaxGrowth sets the per-call growth bound.
func WithFileMaxGrowth(n int) FileOption {
	return func(b *FileBuffer) { b.maxGrowth = n }
}

func newFileBuffer(m *mapfile.File, opts []FileOption) *FileBuffer {
	b := &FileBuffer{m: m, maxGrowth: DefaultMaxGrowth}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bytes returns the logical contents of the mapping.
func (b *FileBuffer) Bytes() []byte { return b.m.Bytes() }

// MaxGrowth returns the per-call growth bound.
func (b *FileBuffer) MaxGrowth() int { return b.maxGrowth }

// Resize moves the logical length within the reserved capacity. Grown bytes
// are zeroed; a rejected resize changes nothing.
func (b *FileBuffer) Resize(newLen int) error {
	if newLen < 0 {
		return fmt.Errorf("%w: %d", ErrBadLength, newLen)
	}
	old := len(b.m.Bytes())
	if newLen > old {
		if grow := newLen - old; grow > b.maxGrowth {
			return fmt.Errorf("%w: grow %d > %d", ErrGrowthLimit, grow, b.maxGrowth)
		}
		if newLen > b.m.Cap() {
			return fmt.Errorf("%w: length %d > capacity %d", ErrGrowthLimit, newLen, b.m.Cap())
		}
	}
	if err := b.m.SetLen(newLen); err != nil {
		return err
	}
	if newLen > old {
		clear(b.m.Bytes()[old:])
	}
	return nil
}

// Sync flushes the mapping to disk.
func (b *FileBuffer) Sync() error { return b.m.Sync() }

// Close flushes and releases the mapping, trimming the file to the logical
// length.
func (b *FileBuffer) Close() error { return b.m.Close() }
