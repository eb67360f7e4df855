package wire

// WireSize is the serialized byte length of a marshaled Unit: identical to
// UnitWireSize since every field is already byte-sized and little-endian
// order is a no-op for single bytes, but kept distinct from the in-memory
// assertion so the two concerns can diverge if Unit ever grows a
// multi-byte header field.
const WireSize = UnitWireSize

// Marshal encodes u into dst, which must be at least WireSize bytes long.
// Fields are written in a fixed order so Unmarshal can invert it without
// reflection, matching the manual per-type marshal idiom used for the
// other fixed-layout wire structs in this codebase.
func Marshal(u Unit, dst []byte) {
	_ = dst[WireSize-1]
	copy(dst[0:PayloadSize], u.Payload[:])
	dst[PayloadSize+0] = byte(u.Type)
	dst[PayloadSize+1] = byte(u.Base)
	dst[PayloadSize+2] = u.Fill
	dst[PayloadSize+3] = u.TaskID
	dst[PayloadSize+4] = u.Sequence
}

// Unmarshal decodes a Unit from src, which must be at least WireSize bytes
// long.
func Unmarshal(src []byte) Unit {
	_ = src[WireSize-1]
	var u Unit
	copy(u.Payload[:], src[0:PayloadSize])
	u.Type = Tag(src[PayloadSize+0])
	u.Base = Base(src[PayloadSize+1])
	u.Fill = src[PayloadSize+2]
	u.TaskID = src[PayloadSize+3]
	u.Sequence = src[PayloadSize+4]
	return u
}
