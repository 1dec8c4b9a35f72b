package crate

import "math"

// TypeCode identifies a field value's on-disk shape. The universe here is
// the closed set of field-value kinds the crate format actually persists
// (spec.md's "any C++ type" generality for the in-memory value.Value is an
// in-process concern; a file format always needs a closed registry in any
// language — this is the Go port's explicit, bounded list).
type TypeCode uint8

const (
	TypeBool TypeCode = iota
	TypeInt            // int32, inline
	TypeInt64          // boxed
	TypeFloat          // float32, inline
	TypeDouble         // float64, boxed
	TypeString         // index into STRINGS, inline
	TypeToken          // index into TOKENS, inline
	TypePath           // index into PATHS, inline
	TypePathListOp     // boxed: encoded PathListOp
	TypeTimeSamples    // boxed: encoded TimeSamples
	TypeDict           // boxed: encoded nested dictionary of scalars
	TypePayload        // boxed: single compact payload record (spec.md §4.5.4)
	TypePayloadListOp  // boxed: general payload list-op, version-gated
	TypeArray          // boxed: element TypeCode + uvarint length + elements (spec.md §4.3/§4.4)
)

// ValueRep is the on-disk 64-bit tagged union from spec.md §4.5.5/§6:
// "either the value is small enough to live in the 64-bit rep itself
// (booleans, small ints, small tokens), or it names a type plus an
// offset/length into the file's value payload." High byte: TypeCode.
// Next bit: inline flag. Low 48 bits: inline payload, or a byte offset
// into the VALUEREPS blob region (where a uvarint length prefix precedes
// the encoded bytes).
type ValueRep uint64

const (
	repTypeShift   = 56
	repInlineShift = 55
	repInlineBit   = uint64(1) << repInlineShift
	repPayloadMask = (uint64(1) << 48) - 1
)

func makeValueRep(t TypeCode, inline bool, payload uint64) ValueRep {
	v := uint64(t) << repTypeShift
	if inline {
		v |= repInlineBit
	}
	v |= payload & repPayloadMask
	return ValueRep(v)
}

func (r ValueRep) Type() TypeCode { return TypeCode(uint64(r) >> repTypeShift) }
func (r ValueRep) IsInline() bool { return uint64(r)&repInlineBit != 0 }
func (r ValueRep) Payload() uint64 { return uint64(r) & repPayloadMask }

func repBool(b bool) ValueRep {
	var p uint64
	if b {
		p = 1
	}
	return makeValueRep(TypeBool, true, p)
}
func (r ValueRep) AsBool() bool { return r.Payload() != 0 }

func repInt(v int32) ValueRep { return makeValueRep(TypeInt, true, uint64(uint32(v))) }
func (r ValueRep) AsInt() int32 { return int32(uint32(r.Payload())) }

func repFloat(v float32) ValueRep {
	return makeValueRep(TypeFloat, true, uint64(math.Float32bits(v)))
}
func (r ValueRep) AsFloat() float32 { return math.Float32frombits(uint32(r.Payload())) }

func repToken(idx uint32) ValueRep { return makeValueRep(TypeToken, true, uint64(idx)) }
func (r ValueRep) AsTokenIndex() uint32 { return uint32(r.Payload()) }

func repPath(idx uint32) ValueRep { return makeValueRep(TypePath, true, uint64(idx)) }
func (r ValueRep) AsPathIndex() uint32 { return uint32(r.Payload()) }

func repString(idx uint32) ValueRep { return makeValueRep(TypeString, true, uint64(idx)) }
func (r ValueRep) AsStringIndex() uint32 { return uint32(r.Payload()) }

func repBoxed(t TypeCode, offset uint64) ValueRep { return makeValueRep(t, false, offset) }
func (r ValueRep) AsOffset() uint64 { return r.Payload() }
