package slab

import "fmt"

// Type describes a layout type that can live inside a slab buffer. It is the
// runtime counterpart of a struct definition: container types compose Types
// into trees, and navigation walks the tree instead of generated accessors.
type Type interface {
	// Consumed reports how many bytes one value of the type occupies at
	// the start of b, validating the encoding as it decodes. It never
	// reads past the reported length.
	Consumed(b []byte) (int, error)

	// AppendZero appends the serialized zero value of the type to dst.
	AppendZero(dst []byte) []byte
}

// Fixed is a fixed-size type whose byte layout alone determines validity.
// An optional Check predicate rejects invalid bit patterns.
type Fixed struct {
	Size  int
	Check func(b []byte) error
}

// Consumed validates the first Size bytes of b.
func (f Fixed) Consumed(b []byte) (int, error) {
	if len(b) < f.Size {
		return 0, fmt.Errorf("fixed[%d]: %w", f.Size, ErrTruncated)
	}
	if f.Check != nil {
		if err := f.Check(b[:f.Size]); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBitPattern, err)
		}
	}
	return f.Size, nil
}

// AppendZero appends Size zero bytes.
func (f Fixed) AppendZero(dst []byte) []byte {
	return append(dst, make([]byte, f.Size)...)
}

// Predefined unchecked integer types. Any bit pattern is a valid unsigned
// integer, so these carry no Check.
var (
	U8  = Fixed{Size: 1}
	U16 = Fixed{Size: 2}
	U32 = Fixed{Size: 4}
	U64 = Fixed{Size: 8}
)

// Bool is a checked one-byte type accepting only 0 or 1.
var Bool = Fixed{Size: 1, Check: func(b []byte) error {
	if b[0] > 1 {
		return fmt.Errorf("bool byte 0x%02x", b[0])
	}
	return nil
}}

// Bytes returns an unchecked fixed type of n raw bytes.
func Bytes(n int) Fixed { return Fixed{Size: n} }
