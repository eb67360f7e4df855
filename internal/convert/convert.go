// Package convert renders wire.Unit atoms into the sink's byte stream,
// honoring each atom's format directive.
package convert

import (
	"math"
	"strconv"

	"github.com/coredump-systems/tinylog/internal/wire"
)

// maxScratchWidth bounds the digit buffer used for numeric rendering. A
// requested fill width beyond this is treated as scratch overflow.
const maxScratchWidth = 128

// Config carries the rendering flags that apply uniformly to every atom.
type Config struct {
	AppendBasePrefix bool
	AlignSigned      bool
}

// Cursor is a mutable write window over a byte buffer. Writes past the
// end are silently dropped, matching the converter's truncate-in-place
// contract.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for writing from its start.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// WriteByte appends one byte, reporting false (and writing nothing) if
// the cursor has reached the end of its buffer.
func (c *Cursor) WriteByte(b byte) bool {
	if c.pos >= len(c.buf) {
		return false
	}
	c.buf[c.pos] = b
	c.pos++
	return true
}

// WriteString appends s byte by byte, stopping (and returning false) the
// moment the buffer fills.
func (c *Cursor) WriteString(s string) bool {
	for i := 0; i < len(s); i++ {
		if !c.WriteByte(s[i]) {
			return false
		}
	}
	return true
}

// Bytes returns the portion of the underlying buffer written so far.
func (c *Cursor) Bytes() []byte {
	return c.buf[:c.pos]
}

// Remaining reports how many bytes are left before the cursor is full.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// DefaultDirective returns the per-type default format directive
// (grounded on original_source/'s Log.h LogConfig defaults: floatFormat
// is cD5, doubleFormat is cD8): unsigned and signed integrals default to
// decimal with no minimum fill, floats default to 5 mantissa digits,
// doubles (and long doubles) to 8.
func DefaultDirective(tag wire.Tag) wire.Directive {
	switch tag.VariantOf() {
	case wire.Float:
		return wire.Directive{Base: wire.Decimal, Fill: 5}
	case wire.Double, wire.LongDouble:
		return wire.Directive{Base: wire.Decimal, Fill: 8}
	case wire.U8, wire.U16, wire.U32, wire.U64,
		wire.I8, wire.I16, wire.I32, wire.I64:
		return wire.Directive{Base: wire.Decimal, Fill: 0}
	default:
		return wire.Directive{Base: wire.Decimal, Fill: 0}
	}
}

// Render writes u's rendered value to cur per its own Base/Fill fields.
// Returns false if rendering stopped early because the cursor filled — in
// which case the converter still owes the record its terminating EOL
// (spec.md §4.6). An invalid base or width renders a single '#' and
// returns false only if that byte did not fit.
func Render(u wire.Unit, cur *Cursor, cfg Config) bool {
	switch u.Type.VariantOf() {
	case wire.Bool:
		if wire.GetBool(u) {
			return cur.WriteString("true")
		}
		return cur.WriteString("false")

	case wire.Char:
		return cur.WriteByte(wire.GetChar(u))

	case wire.CharPtr:
		return writeCString(cur, wire.GetCharPtr(u))

	case wire.InlineString:
		return writeCString(cur, wire.GetInlineString(u))

	case wire.Float:
		return renderFloat(cur, float64(wire.GetFloat(u)), u.Fill)

	case wire.Double, wire.LongDouble:
		return renderFloat(cur, wire.GetDouble(u), u.Fill)

	case wire.U8:
		return renderUnsigned(cur, uint64(wire.GetU8(u)), u.Base, u.Fill, cfg)
	case wire.U16:
		return renderUnsigned(cur, uint64(wire.GetU16(u)), u.Base, u.Fill, cfg)
	case wire.U32:
		return renderUnsigned(cur, uint64(wire.GetU32(u)), u.Base, u.Fill, cfg)
	case wire.U64:
		return renderUnsigned(cur, wire.GetU64(u), u.Base, u.Fill, cfg)

	case wire.I8:
		return renderSigned(cur, int64(wire.GetI8(u)), u.Base, u.Fill, cfg)
	case wire.I16:
		return renderSigned(cur, int64(wire.GetI16(u)), u.Base, u.Fill, cfg)
	case wire.I32:
		return renderSigned(cur, int64(wire.GetI32(u)), u.Base, u.Fill, cfg)
	case wire.I64:
		return renderSigned(cur, wire.GetI64(u), u.Base, u.Fill, cfg)

	default:
		return cur.WriteByte('#')
	}
}

// writeCString copies bytes verbatim until the first NUL or the cursor
// fills, per the by-reference/by-copy string rendering rule.
func writeCString(cur *Cursor, s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			break
		}
		if !cur.WriteByte(s[i]) {
			return false
		}
	}
	return true
}

func renderSigned(cur *Cursor, v int64, base wire.Base, fill uint8, cfg Config) bool {
	if !validBase(base) {
		return cur.WriteByte('#')
	}
	if v < 0 {
		if !cur.WriteByte('-') {
			return false
		}
		return renderUnsigned(cur, uint64(-v), base, fill, cfg)
	}
	if cfg.AlignSigned {
		if !cur.WriteByte(' ') {
			return false
		}
	}
	return renderUnsigned(cur, uint64(v), base, fill, cfg)
}

func validBase(base wire.Base) bool {
	switch base {
	case wire.Binary, wire.Decimal, wire.Hex:
		return true
	default:
		return false
	}
}

func renderUnsigned(cur *Cursor, mag uint64, base wire.Base, fill uint8, cfg Config) bool {
	if !validBase(base) {
		return cur.WriteByte('#')
	}
	if int(fill) > maxScratchWidth {
		return cur.WriteByte('#')
	}

	var scratch [maxScratchWidth]byte
	i := len(scratch)
	b := uint64(base)
	if mag == 0 {
		i--
		scratch[i] = '0'
	}
	for mag > 0 {
		i--
		d := byte(mag % b)
		if d < 10 {
			scratch[i] = '0' + d
		} else {
			scratch[i] = 'a' + (d - 10)
		}
		mag /= b
	}
	digits := scratch[i:]

	if cfg.AppendBasePrefix {
		switch base {
		case wire.Binary:
			if !cur.WriteString("0b") {
				return false
			}
		case wire.Hex:
			if !cur.WriteString("0x") {
				return false
			}
		}
	}

	pad := int(fill) - len(digits)
	for j := 0; j < pad; j++ {
		if !cur.WriteByte('0') {
			return false
		}
	}
	return cur.WriteString(string(digits))
}

func renderFloat(cur *Cursor, v float64, fillMantissaDigits uint8) bool {
	if math.IsNaN(v) {
		return cur.WriteString("nan")
	}
	if math.IsInf(v, 0) {
		return cur.WriteString("inf")
	}
	if v == 0 {
		return cur.WriteString("0")
	}

	digits := int(fillMantissaDigits)
	if digits == 0 {
		digits = 6
	}
	s := strconv.AppendFloat(nil, v, 'e', digits-1, 64)
	return cur.WriteString(string(s))
}
