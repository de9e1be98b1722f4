//go:build !unix

package mapfile

import (
	"fmt"
	"os"
)

// File falls back to a heap buffer written back on Sync/Close when mmap is
// not available.
type File struct {
	path string
	data []byte
	size int
}

// Create creates (or truncates) the file at path with a logical length of
// size bytes and a reserved capacity.
func Create(path string, size, capacity int) (*File, error) {
	if size < 0 || capacity < size {
		return nil, fmt.Errorf("mapfile: bad size %d / capacity %d", size, capacity)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		return nil, err
	}
	return &File{path: path, data: make([]byte, capacity), size: size}, nil
}

// Open reads an existing file. Its length becomes the logical length and
// must not exceed capacity.
func Open(path string, capacity int) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) > capacity {
		return nil, fmt.Errorf("mapfile: file length %d exceeds capacity %d", len(raw), capacity)
	}
	data := make([]byte, capacity)
	copy(data, raw)
	return &File{path: path, data: data, size: len(raw)}, nil
}

// Bytes returns the logical contents.
func (m *File) Bytes() []byte { return m.data[:m.size] }

// Cap returns the reserved capacity in bytes.
func (m *File) Cap() int { return len(m.data) }

// SetLen moves the logical length.
func (m *File) SetLen(n int) error {
	if n < 0 || n > len(m.data) {
		return fmt.Errorf("mapfile: length %d outside capacity %d", n, len(m.data))
	}
	m.size = n
	return nil
}

// Sync writes the logical contents back to the file.
func (m *File) Sync() error {
	return os.WriteFile(m.path, m.data[:m.size], 0o644)
}

// Close writes the logical contents back and releases the buffer.
func (m *File) Close() error {
	if m.data == nil {
		return nil
	}
	err := m.Sync()
	m.data = nil
	return err
}
