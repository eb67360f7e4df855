// Package wire defines the fixed-size binary message unit that crosses the
// producer/worker boundary, and its manual marshal/unmarshal codec.
package wire

import (
	"unsafe"

	"github.com/coredump-systems/tinylog/internal/constants"
)

// PayloadSize is the fixed payload width every Unit carries, matching
// constants.DefaultPayloadSize (P in the configuration surface).
const PayloadSize = constants.DefaultPayloadSize

// Tag discriminates the typed variant a Unit carries. The top bit is
// reserved as the inline-string continuation flag (see ContinuationBit);
// the low seven bits name the variant.
type Tag uint8

const (
	Bool Tag = iota + 1
	Float
	Double
	LongDouble
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	Char
	CharPtr
	InlineString
)

// ContinuationBit, when set on a Unit's Type, marks an InlineString atom
// as a non-final chunk of a string whose by-copy payload spanned more than
// one atom. Grounded on the original implementation's chained-string
// continuation marker (LogMessageCompact.h), reimplemented here as a tag
// bit instead of a side-channel sequence scheme, since sequence must stay
// strictly monotonic per record.
const ContinuationBit Tag = 1 << 7

// VariantOf strips the continuation bit, returning the plain variant tag.
func (t Tag) VariantOf() Tag {
	return t &^ ContinuationBit
}

// Continues reports whether t is an InlineString chunk with more chunks
// following it.
func (t Tag) Continues() bool {
	return t&ContinuationBit != 0
}

// Base enumerates the numeric rendering bases a Directive may select.
type Base uint8

const (
	// BaseNone disables the header field the directive would otherwise
	// control (the sentinel "base=0" from the data model).
	BaseNone Base = 0
	Binary   Base = 2
	Decimal  Base = 10
	Hex      Base = 16
)

// FillStaticRef is the sentinel Fill value marking "the next
// character-string argument is a static reference, not a copy": the
// producer's Push helper watches for this directive and emits a CharPtr
// atom instead of an InlineString chain.
const FillStaticRef = 0xFF

// Directive is the (base, fill) pair controlling how one atom renders.
type Directive struct {
	Base Base
	Fill uint8
}

// Unit is the MessageUnit of the data model: a fixed-size binary record
// carrying exactly one atom plus its header fields.
//
// Ref carries the CharPtr by-reference payload. The data model assumes a
// flat address space where the payload can hold a raw pointer; Go's
// moving garbage collector has no portable equivalent of storing a
// pointer in a byte array and expecting the referent to stay alive, so a
// by-reference atom instead carries the Go string value itself here. A Go
// string is already an immutable, GC-safe view (pointer + length) of its
// backing bytes, which is the spirit of "by-reference" even though it
// isn't laid out in Payload. Ref is excluded from the wire size
// assertion and from Marshal/Unmarshal: by-reference atoms are an
// in-process fast path and are never serialized to bytes.
type Unit struct {
	Payload  [PayloadSize]byte
	Ref      string
	Type     Tag
	Base     Base
	Fill     uint8
	TaskID   uint8
	Sequence uint8
}

// UnitWireSize is the serialized footprint of everything Marshal/Unmarshal
// touch: the payload plus five header bytes (Type, Base, Fill, TaskID,
// Sequence). Ref is intentionally excluded; see the Unit doc comment.
const UnitWireSize = PayloadSize + 5

type wireFields struct {
	Payload  [PayloadSize]byte
	Type     Tag
	Base     Base
	Fill     uint8
	TaskID   uint8
	Sequence uint8
}

// Compile-time size assertion, in the teacher's idiom: if the serialized
// portion of Unit's layout grows unexpectedly, this line fails to
// compile.
var _ [UnitWireSize]byte = [unsafe.Sizeof(wireFields{})]byte{}

// Terminal reports whether u is the terminal atom of a record.
func (u Unit) Terminal() bool {
	return u.Sequence == 0
}
