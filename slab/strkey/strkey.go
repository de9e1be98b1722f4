// Package strkey provides fixed-width string keys for slab maps. Keys are
// stored as NUL-padded UTF-16LE code units and ordered by their raw bytes,
// which is stable and strict even though it is not collation order.
package strkey

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/slabkit/internal/buf"
	"github.com/joshuapare/slabkit/slab"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Type returns a checked fixed-size key type holding up to units UTF-16
// code units.
func Type(units int) slab.Fixed {
	return slab.Fixed{Size: 2 * units, Check: check}
}

// check validates NUL padding and surrogate pairing. Once padding starts,
// only NUL units may follow; a high surrogate must be followed by a low one.
func check(b []byte) error {
	if len(b)%2 != 0 {
		return fmt.Errorf("odd key width %d", len(b))
	}
	padded := false
	pendingHigh := false
	for off := 0; off < len(b); off += 2 {
		u := buf.U16LE(b[off:])
		if u == 0 {
			if pendingHigh {
				return fmt.Errorf("unpaired high surrogate before unit %d", off/2)
			}
			padded = true
			continue
		}
		if padded {
			return fmt.Errorf("content after padding at unit %d", off/2)
		}
		switch {
		case u >= 0xD800 && u < 0xDC00:
			if pendingHigh {
				return fmt.Errorf("unpaired high surrogate before unit %d", off/2)
			}
			pendingHigh = true
		case u >= 0xDC00 && u < 0xE000:
			if !pendingHigh {
				return fmt.Errorf("stray low surrogate at unit %d", off/2)
			}
			pendingHigh = false
		default:
			if pendingHigh {
				return fmt.Errorf("unpaired high surrogate before unit %d", off/2)
			}
		}
	}
	if pendingHigh {
		return fmt.Errorf("unpaired high surrogate at end of key")
	}
	return nil
}

// Encode serializes s into a NUL-padded key of the given unit width. NUL is
// the padding unit, so s must not contain U+0000.
func Encode(s string, units int) ([]byte, error) {
	if strings.ContainsRune(s, 0) {
		return nil, fmt.Errorf("strkey: %q contains NUL", s)
	}
	raw, _, err := transform.Bytes(utf16le.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("strkey: %w", err)
	}
	if len(raw) > 2*units {
		return nil, fmt.Errorf("strkey: %q needs %d units, width is %d", s, len(raw)/2, units)
	}
	key := make([]byte, 2*units)
	copy(key, raw)
	return key, nil
}

// Decode recovers the string from a key, dropping the NUL padding.
func Decode(b []byte) (string, error) {
	if err := check(b); err != nil {
		return "", fmt.Errorf("strkey: %w: %v", slab.ErrBitPattern, err)
	}
	end := len(b)
	for end >= 2 && buf.U16LE(b[end-2:]) == 0 {
		end -= 2
	}
	units := make([]uint16, 0, end/2)
	for off := 0; off < end; off += 2 {
		units = append(units, buf.U16LE(b[off:]))
	}
	return string(utf16.Decode(units)), nil
}
