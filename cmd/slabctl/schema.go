package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/strkey"
)

// parseSchema turns a schema expression into a slab.Type. Grammar:
//
//	u8 | u16 | u32 | u64 | bool
//	bytes(N) | strkey(UNITS)
//	list(ITEM, w8|w16|w32)
//	map(KEY, VALUE)
//	pair(FIRST, SECOND)
//	struct(name=TYPE, ...)
//
// ITEM and KEY must be fixed-size types.
func parseSchema(expr string) (slab.Type, error) {
	p := &schemaParser{in: expr}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.in) {
		return nil, fmt.Errorf("schema: trailing input at %d: %q", p.pos, p.in[p.pos:])
	}
	return t, nil
}

type schemaParser struct {
	in  string
	pos int
}

func (p *schemaParser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t') {
		p.pos++
	}
}

func (p *schemaParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.in[start:p.pos]
}

func (p *schemaParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.in) || p.in[p.pos] != c {
		return fmt.Errorf("schema: expected %q at %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *schemaParser) peekIs(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.in) && p.in[p.pos] == c
}

func (p *schemaParser) number() (int, error) {
	word := p.ident()
	n, err := strconv.Atoi(word)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("schema: bad number %q", word)
	}
	return n, nil
}

func (p *schemaParser) parseType() (slab.Type, error) {
	name := strings.ToLower(p.ident())
	switch name {
	case "u8":
		return slab.U8, nil
	case "u16":
		return slab.U16, nil
	case "u32":
		return slab.U32, nil
	case "u64":
		return slab.U64, nil
	case "bool":
		return slab.Bool, nil
	case "bytes":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return slab.Bytes(n), nil
	case "strkey":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return strkey.Type(n), nil
	case "list":
		return p.parseList()
	case "map":
		return p.parseMap()
	case "pair":
		return p.parsePair()
	case "struct":
		return p.parseStruct()
	default:
		return nil, fmt.Errorf("schema: unknown type %q", name)
	}
}

func (p *schemaParser) parseFixed() (slab.Fixed, error) {
	t, err := p.parseType()
	if err != nil {
		return slab.Fixed{}, err
	}
	f, ok := t.(slab.Fixed)
	if !ok {
		return slab.Fixed{}, fmt.Errorf("schema: %T is not fixed-size", t)
	}
	return f, nil
}

func (p *schemaParser) parseList() (slab.Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	item, err := p.parseFixed()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	var width slab.Width
	switch w := strings.ToLower(p.ident()); w {
	case "w8":
		width = slab.W8
	case "w16":
		width = slab.W16
	case "w32":
		width = slab.W32
	default:
		return nil, fmt.Errorf("schema: bad width %q", w)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return slab.ListType{Item: item, Width: width}, nil
}

func (p *schemaParser) parseMap() (slab.Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	k, err := p.parseFixed()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	v, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return slab.MapType{Key: k, Value: v}, nil
}

func (p *schemaParser) parsePair() (slab.Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	first, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	second, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return slab.PairType{First: first, Second: second}, nil
}

func (p *schemaParser) parseStruct() (slab.Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var fields []slab.Field
	for {
		name := p.ident()
		if name == "" {
			return nil, fmt.Errorf("schema: missing field name at %d", p.pos)
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, slab.Field{Name: name, Type: t})
		if p.peekIs(',') {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return slab.StructType{Fields: fields}, nil
}
