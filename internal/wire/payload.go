package wire

import (
	"encoding/binary"
	"math"
)

// Payload encoding helpers. Each primitive width gets its own pair of
// functions rather than a reflection-based codec, matching the hand-rolled
// marshal style used elsewhere in this codebase for fixed-layout structs.

func PutBool(u *Unit, v bool) {
	if v {
		u.Payload[0] = 1
	} else {
		u.Payload[0] = 0
	}
}

func GetBool(u Unit) bool {
	return u.Payload[0] != 0
}

func PutU8(u *Unit, v uint8)   { u.Payload[0] = v }
func GetU8(u Unit) uint8       { return u.Payload[0] }
func PutI8(u *Unit, v int8)    { u.Payload[0] = uint8(v) }
func GetI8(u Unit) int8        { return int8(u.Payload[0]) }
func PutChar(u *Unit, v byte)  { u.Payload[0] = v }
func GetChar(u Unit) byte      { return u.Payload[0] }

func PutU16(u *Unit, v uint16) { binary.LittleEndian.PutUint16(u.Payload[:2], v) }
func GetU16(u Unit) uint16     { return binary.LittleEndian.Uint16(u.Payload[:2]) }
func PutI16(u *Unit, v int16)  { binary.LittleEndian.PutUint16(u.Payload[:2], uint16(v)) }
func GetI16(u Unit) int16      { return int16(binary.LittleEndian.Uint16(u.Payload[:2])) }

func PutU32(u *Unit, v uint32) { binary.LittleEndian.PutUint32(u.Payload[:4], v) }
func GetU32(u Unit) uint32     { return binary.LittleEndian.Uint32(u.Payload[:4]) }
func PutI32(u *Unit, v int32)  { binary.LittleEndian.PutUint32(u.Payload[:4], uint32(v)) }
func GetI32(u Unit) int32      { return int32(binary.LittleEndian.Uint32(u.Payload[:4])) }

func PutU64(u *Unit, v uint64) { binary.LittleEndian.PutUint64(u.Payload[:8], v) }
func GetU64(u Unit) uint64     { return binary.LittleEndian.Uint64(u.Payload[:8]) }
func PutI64(u *Unit, v int64)  { binary.LittleEndian.PutUint64(u.Payload[:8], uint64(v)) }
func GetI64(u Unit) int64      { return int64(binary.LittleEndian.Uint64(u.Payload[:8])) }

func PutFloat(u *Unit, v float32) { binary.LittleEndian.PutUint32(u.Payload[:4], math.Float32bits(v)) }
func GetFloat(u Unit) float32     { return math.Float32frombits(binary.LittleEndian.Uint32(u.Payload[:4])) }

func PutDouble(u *Unit, v float64) {
	binary.LittleEndian.PutUint64(u.Payload[:8], math.Float64bits(v))
}
func GetDouble(u Unit) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(u.Payload[:8]))
}

// PutCharPtr sets the by-reference payload. See the Unit doc comment for
// why this sets Ref rather than packing a pointer into Payload.
func PutCharPtr(u *Unit, v string) {
	u.Ref = v
}

// GetCharPtr returns the string referenced by a CharPtr atom.
func GetCharPtr(u Unit) string {
	return u.Ref
}

// PutInlineString copies up to PayloadSize bytes of v into the payload
// by-copy. Callers needing to carry a longer string chain multiple
// InlineString atoms together using the ContinuationBit.
func PutInlineString(u *Unit, chunk string) {
	n := copy(u.Payload[:], chunk)
	for i := n; i < PayloadSize; i++ {
		u.Payload[i] = 0
	}
}

// GetInlineString returns the by-copy chunk stored in u's payload, cut at
// the first NUL byte (or the full payload if none is present).
func GetInlineString(u Unit) string {
	return stringFromNulTerminated(u.Payload[:])
}

func stringFromNulTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
