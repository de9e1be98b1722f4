package slab

import "errors"

var (
	// ErrOutOfBounds indicates an item index or range outside the
	// container's current length.
	ErrOutOfBounds = errors.New("slab: index out of bounds")

	// ErrLengthOverflow indicates an item count that cannot be represented
	// in the container's length-field width.
	ErrLengthOverflow = errors.New("slab: length field overflow")

	// ErrTruncated indicates bytes too short for the declared structure.
	ErrTruncated = errors.New("slab: truncated")

	// ErrBitPattern indicates decoded bytes that fail a checked type's
	// validity predicate.
	ErrBitPattern = errors.New("slab: invalid bit pattern")

	// ErrItemSize indicates a serialized item whose length does not match
	// the container's item type.
	ErrItemSize = errors.New("slab: item size mismatch")

	// ErrTrailing indicates a view holding more bytes than the declared
	// structure consumes.
	ErrTrailing = errors.New("slab: trailing bytes")
)
