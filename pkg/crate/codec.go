package crate

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
	"github.com/edirooss/scenecore/pkg/vtdict"
)

// A writeCtx/readCtx pair carries the token/string/path indices a codec
// needs to turn a scalar value.Value into indexed references, and back.
// Kept separate from the section writer/reader so the same scalar codec
// serves both top-level field values and values nested inside a Dict.
type writeCtx struct {
	tokens  *tokenTable
	strings *tokenTable
	paths   *pathTable

	// needsPayloadListOp is set by encodeFieldValue when a payload field's
	// list-op could not be collapsed to the compact single-payload form
	// (spec.md §4.5.4), forcing writeDocument to raise its target version
	// to at least payloadListOpVersion (spec.md §4.5.6/§4.5.7).
	needsPayloadListOp bool
}

type readCtx struct {
	tokens  *tokenTable
	strings *tokenTable
	paths   *pathTable
}

func putUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func getUvarint(r *bytes.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}

// encodeScalar writes a type-tagged scalar value.Value (any TypeCode except
// TypePathListOp/TypeTimeSamples, which have their own container codecs) to
// buf, resolving strings/tokens/paths through ctx's tables as needed.
func encodeScalar(buf *bytes.Buffer, ctx *writeCtx, v value.Value) error {
	switch x := v.Interface().(type) {
	case bool:
		buf.WriteByte(byte(TypeBool))
		if x {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case int32:
		buf.WriteByte(byte(TypeInt))
		putUvarint(buf, uint64(uint32(x)))
	case int64:
		buf.WriteByte(byte(TypeInt64))
		putUvarint(buf, uint64(x))
	case float32:
		buf.WriteByte(byte(TypeFloat))
		binary.Write(buf, binary.LittleEndian, math.Float32bits(x))
	case float64:
		buf.WriteByte(byte(TypeDouble))
		binary.Write(buf, binary.LittleEndian, math.Float64bits(x))
	case string:
		buf.WriteByte(byte(TypeString))
		putUvarint(buf, uint64(ctx.strings.intern(x)))
	case sdfpath.Path:
		buf.WriteByte(byte(TypePath))
		putUvarint(buf, uint64(ctx.paths.indexOf(x)))
	case *vtdict.Dict:
		buf.WriteByte(byte(TypeDict))
		return encodeDict(buf, ctx, x)
	case value.Array[bool]:
		encodeArray(buf, TypeBool, x, func(b *bytes.Buffer, e bool) {
			if e {
				b.WriteByte(1)
			} else {
				b.WriteByte(0)
			}
		})
	case value.Array[int32]:
		encodeArray(buf, TypeInt, x, func(b *bytes.Buffer, e int32) { putUvarint(b, uint64(uint32(e))) })
	case value.Array[int64]:
		encodeArray(buf, TypeInt64, x, func(b *bytes.Buffer, e int64) { putUvarint(b, uint64(e)) })
	case value.Array[float32]:
		encodeArray(buf, TypeFloat, x, func(b *bytes.Buffer, e float32) {
			binary.Write(b, binary.LittleEndian, math.Float32bits(e))
		})
	case value.Array[float64]:
		encodeArray(buf, TypeDouble, x, func(b *bytes.Buffer, e float64) {
			binary.Write(b, binary.LittleEndian, math.Float64bits(e))
		})
	case value.Array[string]:
		encodeArray(buf, TypeString, x, func(b *bytes.Buffer, e string) { putUvarint(b, uint64(ctx.strings.intern(e))) })
	case value.Array[sdfpath.Path]:
		encodeArray(buf, TypePath, x, func(b *bytes.Buffer, e sdfpath.Path) { putUvarint(b, uint64(ctx.paths.indexOf(e))) })
	default:
		return diag.Newf(diag.TypeMismatch, "value of type %s has no crate scalar encoding", v.TypeName())
	}
	return nil
}

// encodeArray writes a value.Array[T]'s on-disk form: a TypeArray tag, the
// element TypeCode, a uvarint length, then each element via encodeElem —
// the array analog of encodeScalar's per-type cases (spec.md §4.3/§4.4:
// array-valued attributes are the most common field shape in the real
// system this format backs).
func encodeArray[T any](buf *bytes.Buffer, elemCode TypeCode, a value.Array[T], encodeElem func(*bytes.Buffer, T)) {
	buf.WriteByte(byte(TypeArray))
	buf.WriteByte(byte(elemCode))
	putUvarint(buf, uint64(a.Len()))
	for i := 0; i < a.Len(); i++ {
		encodeElem(buf, a.At(i))
	}
}

// decodeArrayBody reads n elements via decodeElem into a freshly owned
// Array[T], the decode counterpart of encodeArray.
func decodeArrayBody[T any](r *bytes.Reader, n uint64, decodeElem func(*bytes.Reader) (T, error)) (value.Array[T], error) {
	out := make([]T, n)
	for i := range out {
		v, err := decodeElem(r)
		if err != nil {
			return value.Array[T]{}, err
		}
		out[i] = v
	}
	return value.NewArray(out), nil
}

func decodeScalar(r *bytes.Reader, ctx *readCtx) (value.Value, error) {
	tb, err := r.ReadByte()
	if err != nil {
		return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read scalar type tag")
	}
	switch TypeCode(tb) {
	case TypeBool:
		b, err := r.ReadByte()
		if err != nil {
			return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read bool")
		}
		return value.New(b != 0), nil
	case TypeInt:
		u, err := getUvarint(r)
		if err != nil {
			return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read int")
		}
		return value.New(int32(uint32(u))), nil
	case TypeInt64:
		u, err := getUvarint(r)
		if err != nil {
			return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read int64")
		}
		return value.New(int64(u)), nil
	case TypeFloat:
		var bits uint32
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read float")
		}
		return value.New(math.Float32frombits(bits)), nil
	case TypeDouble:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read double")
		}
		return value.New(math.Float64frombits(bits)), nil
	case TypeString:
		idx, err := getUvarint(r)
		if err != nil {
			return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read string index")
		}
		return value.New(ctx.strings.at(uint32(idx))), nil
	case TypePath:
		idx, err := getUvarint(r)
		if err != nil {
			return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read path index")
		}
		p, err := ctx.paths.at(uint32(idx))
		if err != nil {
			return value.Empty(), err
		}
		return value.New(p), nil
	case TypeDict:
		d, err := decodeDict(r, ctx)
		if err != nil {
			return value.Empty(), err
		}
		return value.New(d), nil
	case TypeArray:
		return decodeArray(r, ctx)
	default:
		return value.Empty(), diag.Newf(diag.CorruptFile, "unknown scalar type tag %d", tb)
	}
}

// decodeArray reads the element TypeCode and length that encodeArray wrote,
// then dispatches to the matching decodeArrayBody instantiation.
func decodeArray(r *bytes.Reader, ctx *readCtx) (value.Value, error) {
	eb, err := r.ReadByte()
	if err != nil {
		return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read array element type tag")
	}
	n, err := getUvarint(r)
	if err != nil {
		return value.Empty(), diag.Wrap(diag.CorruptFile, err, "read array length")
	}
	switch TypeCode(eb) {
	case TypeBool:
		a, err := decodeArrayBody(r, n, func(r *bytes.Reader) (bool, error) {
			b, err := r.ReadByte()
			if err != nil {
				return false, diag.Wrap(diag.CorruptFile, err, "read array bool element")
			}
			return b != 0, nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(a), nil
	case TypeInt:
		a, err := decodeArrayBody(r, n, func(r *bytes.Reader) (int32, error) {
			u, err := getUvarint(r)
			if err != nil {
				return 0, diag.Wrap(diag.CorruptFile, err, "read array int element")
			}
			return int32(uint32(u)), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(a), nil
	case TypeInt64:
		a, err := decodeArrayBody(r, n, func(r *bytes.Reader) (int64, error) {
			u, err := getUvarint(r)
			if err != nil {
				return 0, diag.Wrap(diag.CorruptFile, err, "read array int64 element")
			}
			return int64(u), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(a), nil
	case TypeFloat:
		a, err := decodeArrayBody(r, n, func(r *bytes.Reader) (float32, error) {
			var bits uint32
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return 0, diag.Wrap(diag.CorruptFile, err, "read array float element")
			}
			return math.Float32frombits(bits), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(a), nil
	case TypeDouble:
		a, err := decodeArrayBody(r, n, func(r *bytes.Reader) (float64, error) {
			var bits uint64
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return 0, diag.Wrap(diag.CorruptFile, err, "read array double element")
			}
			return math.Float64frombits(bits), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(a), nil
	case TypeString:
		a, err := decodeArrayBody(r, n, func(r *bytes.Reader) (string, error) {
			idx, err := getUvarint(r)
			if err != nil {
				return "", diag.Wrap(diag.CorruptFile, err, "read array string element")
			}
			return ctx.strings.at(uint32(idx)), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(a), nil
	case TypePath:
		a, err := decodeArrayBody(r, n, func(r *bytes.Reader) (sdfpath.Path, error) {
			idx, err := getUvarint(r)
			if err != nil {
				return sdfpath.EmptyPath, diag.Wrap(diag.CorruptFile, err, "read array path element")
			}
			return ctx.paths.at(uint32(idx))
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(a), nil
	default:
		return value.Empty(), diag.Newf(diag.CorruptFile, "unsupported array element type tag %d", eb)
	}
}

func encodeDict(buf *bytes.Buffer, ctx *writeCtx, d *vtdict.Dict) error {
	keys := d.Keys()
	putUvarint(buf, uint64(len(keys)))
	for _, k := range keys {
		kb := []byte(k)
		putUvarint(buf, uint64(len(kb)))
		buf.Write(kb)
		v, _ := d.Get(k)
		if err := encodeScalar(buf, ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeDict(r *bytes.Reader, ctx *readCtx) (*vtdict.Dict, error) {
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read dict size")
	}
	d := &vtdict.Dict{}
	for i := uint64(0); i < n; i++ {
		klen, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read dict key length")
		}
		kb := make([]byte, klen)
		if _, err := r.Read(kb); err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read dict key")
		}
		v, err := decodeScalar(r, ctx)
		if err != nil {
			return nil, err
		}
		d.Set(string(kb), v)
	}
	return d, nil
}

// encodePathListOp/decodePathListOp serialize the boxed PathListOp
// container value (targetPaths, connectionPaths fields).
func encodePathListOp(buf *bytes.Buffer, ctx *writeCtx, op PathListOp) {
	var flags byte
	if op.IsExplicit {
		flags = 1
	}
	buf.WriteByte(flags)
	writePathList(buf, ctx, op.Explicit)
	writePathList(buf, ctx, op.Prepended)
	writePathList(buf, ctx, op.Appended)
	writePathList(buf, ctx, op.Deleted)
}

func decodePathListOp(r *bytes.Reader, ctx *readCtx) (PathListOp, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return PathListOp{}, diag.Wrap(diag.CorruptFile, err, "read list-op flags")
	}
	op := PathListOp{IsExplicit: flags&1 != 0}
	var readErr error
	op.Explicit, readErr = readPathList(r, ctx)
	if readErr != nil {
		return op, readErr
	}
	op.Prepended, readErr = readPathList(r, ctx)
	if readErr != nil {
		return op, readErr
	}
	op.Appended, readErr = readPathList(r, ctx)
	if readErr != nil {
		return op, readErr
	}
	op.Deleted, readErr = readPathList(r, ctx)
	return op, readErr
}

func writePathList(buf *bytes.Buffer, ctx *writeCtx, paths []sdfpath.Path) {
	putUvarint(buf, uint64(len(paths)))
	for _, p := range paths {
		putUvarint(buf, uint64(ctx.paths.indexOf(p)))
	}
}

func readPathList(r *bytes.Reader, ctx *readCtx) ([]sdfpath.Path, error) {
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read path-list length")
	}
	out := make([]sdfpath.Path, n)
	for i := range out {
		idx, err := getUvarint(r)
		if err != nil {
			return nil, diag.Wrap(diag.CorruptFile, err, "read path-list index")
		}
		p, err := ctx.paths.at(uint32(idx))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// encodePayload/decodePayload serialize the compact single-payload on-disk
// record used for backward compatibility (spec.md §4.5.4).
func encodePayload(buf *bytes.Buffer, ctx *writeCtx, p Payload, isEmpty bool) {
	var flags byte
	if isEmpty {
		flags = 1
	}
	buf.WriteByte(flags)
	putUvarint(buf, uint64(ctx.strings.intern(p.AssetPath)))
	if p.TargetPath.IsEmpty() {
		putUvarint(buf, uint64(NullPathIndex))
	} else {
		putUvarint(buf, uint64(ctx.paths.indexOf(p.TargetPath)))
	}
}

func decodePayload(r *bytes.Reader, ctx *readCtx) (Payload, bool, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Payload{}, false, diag.Wrap(diag.CorruptFile, err, "read payload flags")
	}
	isEmpty := flags&1 != 0
	assetIdx, err := getUvarint(r)
	if err != nil {
		return Payload{}, false, diag.Wrap(diag.CorruptFile, err, "read payload asset-path index")
	}
	pathIdx, err := getUvarint(r)
	if err != nil {
		return Payload{}, false, diag.Wrap(diag.CorruptFile, err, "read payload target-path index")
	}
	p := Payload{AssetPath: ctx.strings.at(uint32(assetIdx))}
	if uint32(pathIdx) != NullPathIndex {
		p.TargetPath, err = ctx.paths.at(uint32(pathIdx))
		if err != nil {
			return Payload{}, false, err
		}
	}
	return p, isEmpty, nil
}

// encodePayloadListOp/decodePayloadListOp serialize the general (non-
// collapsible) payload list-op form, gated behind featurePayloadListOp
// (spec.md §4.5.4/§4.5.7).
func encodePayloadListOp(buf *bytes.Buffer, ctx *writeCtx, op PayloadListOp) {
	var flags byte
	if op.IsExplicit {
		flags = 1
	}
	buf.WriteByte(flags)
	writePayloadList(buf, ctx, op.Explicit)
	writePayloadList(buf, ctx, op.Prepended)
	writePayloadList(buf, ctx, op.Appended)
	writePayloadList(buf, ctx, op.Deleted)
}

func writePayloadList(buf *bytes.Buffer, ctx *writeCtx, items []Payload) {
	putUvarint(buf, uint64(len(items)))
	for _, p := range items {
		encodePayload(buf, ctx, p, false)
	}
}

func decodePayloadListOp(r *bytes.Reader, ctx *readCtx) (PayloadListOp, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return PayloadListOp{}, diag.Wrap(diag.CorruptFile, err, "read payload list-op flags")
	}
	op := PayloadListOp{IsExplicit: flags&1 != 0}
	var readErr error
	op.Explicit, readErr = readPayloadList(r, ctx)
	if readErr != nil {
		return op, readErr
	}
	op.Prepended, readErr = readPayloadList(r, ctx)
	if readErr != nil {
		return op, readErr
	}
	op.Appended, readErr = readPayloadList(r, ctx)
	if readErr != nil {
		return op, readErr
	}
	op.Deleted, readErr = readPayloadList(r, ctx)
	return op, readErr
}

func readPayloadList(r *bytes.Reader, ctx *readCtx) ([]Payload, error) {
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read payload-list length")
	}
	out := make([]Payload, n)
	for i := range out {
		p, _, err := decodePayload(r, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// encodeTimeSamples/decodeTimeSamples serialize the timeSamples field's
// internal two-vector representation (spec.md §4.5.3).
func encodeTimeSamples(buf *bytes.Buffer, ctx *writeCtx, f timeSamplesField) error {
	putUvarint(buf, uint64(len(f.Times)))
	for _, t := range f.Times {
		binary.Write(buf, binary.LittleEndian, math.Float64bits(t))
	}
	for _, v := range f.Values {
		if err := encodeScalar(buf, ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeTimeSamples(r *bytes.Reader, ctx *readCtx) (timeSamplesField, error) {
	n, err := getUvarint(r)
	if err != nil {
		return timeSamplesField{}, diag.Wrap(diag.CorruptFile, err, "read time-samples count")
	}
	f := timeSamplesField{Times: make([]float64, n), Values: make([]value.Value, n)}
	for i := range f.Times {
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return f, diag.Wrap(diag.CorruptFile, err, "read time-sample time")
		}
		f.Times[i] = math.Float64frombits(bits)
	}
	for i := range f.Values {
		v, err := decodeScalar(r, ctx)
		if err != nil {
			return f, err
		}
		f.Values[i] = v
	}
	return f, nil
}
