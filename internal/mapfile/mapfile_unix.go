//go:build unix

package mapfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-write memory mapping with a fixed reserved capacity. The
// backing file is held at capacity bytes while the mapping is open so the
// logical length can move freely without remapping; Close trims the file
// back to the logical length.
type File struct {
	f    *os.File
	data []byte // mapping of capacity bytes
	size int    // current logical length
}

// Create creates (or truncates) the file at path and maps capacity bytes of
// it read-write. The logical length starts at size.
func Create(path string, size, capacity int) (*File, error) {
	if size < 0 || capacity < size {
		return nil, fmt.Errorf("mapfile: bad size %d / capacity %d", size, capacity)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return mapAt(f, size, capacity)
}

// Open maps an existing file read-write. The file's current length becomes
// the logical length and must not exceed capacity.
func Open(path string, capacity int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := int(info.Size())
	if size > capacity {
		f.Close()
		return nil, fmt.Errorf("mapfile: file length %d exceeds capacity %d", size, capacity)
	}
	return mapAt(f, size, capacity)
}

func mapAt(f *os.File, size, capacity int) (*File, error) {
	if err := f.Truncate(int64(capacity)); err != nil {
		f.Close()
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, capacity,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{f: f, data: data, size: size}, nil
}

// Bytes returns the logical contents. The slice aliases the mapping and is
// invalidated by Close.
func (m *File) Bytes() []byte { return m.data[:m.size] }

// Cap returns the reserved capacity in bytes.
func (m *File) Cap() int { return len(m.data) }

// SetLen moves the logical length. No syscall is involved; the file stays at
// capacity until Close.
func (m *File) SetLen(n int) error {
	if n < 0 || n > len(m.data) {
		return fmt.Errorf("mapfile: length %d outside capacity %d", n, len(m.data))
	}
	m.size = n
	return nil
}

// Sync flushes the mapped region to disk.
func (m *File) Sync() error {
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return err
	}
	return unix.Fdatasync(int(m.f.Fd()))
}

// Close unmaps, trims the file to the logical length, and closes it.
func (m *File) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Msync(m.data, unix.MS_SYNC)
	if uerr := unix.Munmap(m.data); err == nil {
		err = uerr
	}
	m.data = nil
	if terr := m.f.Truncate(int64(m.size)); err == nil {
		err = terr
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
