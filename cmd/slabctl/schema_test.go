package main

import (
	"testing"

	"github.com/joshuapare/slabkit/slab"
)

func TestParseSchema(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"u8", false},
		{"list(u64, w16)", false},
		{"map(bytes(2), list(u8, w8))", false},
		{"pair(list(u8, w8), strkey(8))", false},
		{"struct(bump=u8, entries=list(u64, w16))", false},
		{"struct(a=u8, b=map(strkey(4), list(u8, w8)))", false},
		{"", true},
		{"list(u8)", true},
		{"list(list(u8, w8), w8)", true}, // list items must be fixed-size
		{"map(u8)", true},
		{"u8 trailing", true},
		{"struct()", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			typ, err := parseSchema(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSchema(%q) succeeded, want error", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSchema(%q): %v", tt.expr, err)
			}
			if typ == nil {
				t.Fatalf("parseSchema(%q) returned nil type", tt.expr)
			}
		})
	}
}

func TestParsedSchemaDecodesZeroValue(t *testing.T) {
	typ, err := parseSchema("struct(bump=u8, attrs=map(bytes(2), list(u8, w8)))")
	if err != nil {
		t.Fatal(err)
	}
	zero := typ.AppendZero(nil)
	n, err := typ.Consumed(zero)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(zero) {
		t.Fatalf("consumed %d of %d zero bytes", n, len(zero))
	}
	if _, ok := typ.(slab.StructType); !ok {
		t.Fatalf("expected StructType, got %T", typ)
	}
}
