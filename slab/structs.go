package slab

import (
	"fmt"

	"github.com/joshuapare/slabkit/slab/arena"
)

// Field is one named member of a StructType.
type Field struct {
	Name string
	Type Type
}

// StructType is an ordered sequence of named fields laid out back to back,
// the runtime replacement for generated per-struct accessor types. Field
// offsets are derived by decoding, never stored, so any field may hold a
// variable-length container.
type StructType struct {
	Fields []Field
}

// Consumed decodes each field in order and sums their lengths.
func (t StructType) Consumed(b []byte) (int, error) {
	total := 0
	for _, f := range t.Fields {
		n, err := f.Type.Consumed(b[total:])
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", f.Name, err)
		}
		total += n
	}
	return total, nil
}

// AppendZero appends each field's zero value in order.
func (t StructType) AppendZero(dst []byte) []byte {
	for _, f := range t.Fields {
		dst = f.Type.AppendZero(dst)
	}
	return dst
}

// Open validates that v spans exactly one struct encoding and returns a
// handle with a registered child view per field. Resizing inside one field
// shifts every later field's view automatically.
func (t StructType) Open(v *arena.View) (*Struct, error) {
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	offs := make([]int, 0, len(t.Fields)+1)
	total := 0
	for _, f := range t.Fields {
		offs = append(offs, total)
		n, err := f.Type.Consumed(b[total:])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		total += n
	}
	if total != len(b) {
		return nil, fmt.Errorf("struct: %d of %d bytes consumed: %w", total, len(b), ErrTrailing)
	}
	offs = append(offs, total)
	views := make([]*arena.View, len(t.Fields))
	for i := range t.Fields {
		fv, err := v.Sub(offs[i], offs[i+1]-offs[i])
		if err != nil {
			for _, prev := range views[:i] {
				prev.Release()
			}
			return nil, err
		}
		views[i] = fv
	}
	return &Struct{t: t, v: v, fields: views}, nil
}

// Struct is a handle over one struct encoding.
type Struct struct {
	t      StructType
	v      *arena.View
	fields []*arena.View
}

// View returns the view spanning the whole struct.
func (s *Struct) View() *arena.View { return s.v }

// NumFields returns the field count.
func (s *Struct) NumFields() int { return len(s.fields) }

// Field returns the view over the i-th field.
func (s *Struct) Field(i int) *arena.View { return s.fields[i] }

// FieldByName returns the view over the named field.
func (s *Struct) FieldByName(name string) (*arena.View, bool) {
	for i, f := range s.t.Fields {
		if f.Name == name {
			return s.fields[i], true
		}
	}
	return nil, false
}
