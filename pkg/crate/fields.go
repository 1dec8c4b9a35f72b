package crate

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/value"
)

// fieldRecord is one row of the FIELDS section: a field-name token plus the
// ValueRep describing where/how its value is stored (spec.md §6: "FIELDS:
// array of (name-token, ValueRep) pairs").
type fieldRecord struct {
	NameToken uint32
	Rep       ValueRep
}

// blobWriter accumulates the VALUEREPS payload blob: each boxed value is
// appended as a uvarint length prefix followed by its encoded bytes, and
// the ValueRep stores the byte offset of that length prefix (spec.md
// §4.5.5/§6).
type blobWriter struct {
	buf bytes.Buffer
}

func (b *blobWriter) put(ctx *writeCtx, encode func(*bytes.Buffer, *writeCtx) error) (uint64, error) {
	offset := uint64(b.buf.Len())
	var body bytes.Buffer
	if err := encode(&body, ctx); err != nil {
		return 0, err
	}
	putUvarint(&b.buf, uint64(body.Len()))
	b.buf.Write(body.Bytes())
	return offset, nil
}

// blobReader resolves a ValueRep's boxed payload from the VALUEREPS blob.
type blobReader struct {
	data []byte
}

func (b *blobReader) decode(offset uint64, ctx *readCtx, decode func(*bytes.Reader, *readCtx) (any, error)) (any, error) {
	sub := b.data[offset:]
	r := bytes.NewReader(sub)
	n, err := getUvarint(r)
	if err != nil {
		return nil, diag.Wrap(diag.CorruptFile, err, "read blob length prefix")
	}
	headerLen := len(sub) - r.Len()
	if uint64(headerLen)+n > uint64(len(sub)) {
		return nil, diag.New(diag.CorruptFile, "blob entry length exceeds buffer")
	}
	body := bytes.NewReader(sub[headerLen : uint64(headerLen)+n])
	return decode(body, ctx)
}

// encodeFieldValue converts v to a ValueRep, writing any boxed form into
// blob and resolving strings/tokens/paths through ctx.
func encodeFieldValue(ctx *writeCtx, blob *blobWriter, v value.Value) (ValueRep, error) {
	switch x := v.Interface().(type) {
	case bool:
		return repBool(x), nil
	case int32:
		return repInt(x), nil
	case float32:
		return repFloat(x), nil
	case string:
		return repString(ctx.strings.intern(x)), nil
	case int64:
		off, err := blob.put(ctx, func(buf *bytes.Buffer, c *writeCtx) error {
			binary.Write(buf, binary.LittleEndian, uint64(x))
			return nil
		})
		if err != nil {
			return 0, err
		}
		return repBoxed(TypeInt64, off), nil
	case float64:
		off, err := blob.put(ctx, func(buf *bytes.Buffer, c *writeCtx) error {
			var bits [8]byte
			binary.LittleEndian.PutUint64(bits[:], math.Float64bits(x))
			buf.Write(bits[:])
			return nil
		})
		if err != nil {
			return 0, err
		}
		return repBoxed(TypeDouble, off), nil
	case PathListOp:
		off, err := blob.put(ctx, func(buf *bytes.Buffer, c *writeCtx) error {
			encodePathListOp(buf, c, x)
			return nil
		})
		if err != nil {
			return 0, err
		}
		return repBoxed(TypePathListOp, off), nil
	case PayloadListOp:
		if payload, isEmpty, ok := x.CollapseToCompact(); ok {
			off, err := blob.put(ctx, func(buf *bytes.Buffer, c *writeCtx) error {
				encodePayload(buf, c, payload, isEmpty)
				return nil
			})
			if err != nil {
				return 0, err
			}
			return repBoxed(TypePayload, off), nil
		}
		ctx.needsPayloadListOp = true
		off, err := blob.put(ctx, func(buf *bytes.Buffer, c *writeCtx) error {
			encodePayloadListOp(buf, c, x)
			return nil
		})
		if err != nil {
			return 0, err
		}
		return repBoxed(TypePayloadListOp, off), nil
	case TimeSampleSet:
		// Conversion from the public ordered-map exchange form to the
		// internal sorted two-vector form happens only here, at write time
		// (spec.md §4.5.3).
		off, err := blob.put(ctx, func(buf *bytes.Buffer, c *writeCtx) error {
			return encodeTimeSamples(buf, c, fromTimeSampleSet(x))
		})
		if err != nil {
			return 0, err
		}
		return repBoxed(TypeTimeSamples, off), nil
	default:
		// Anything else (including a token-typed string or a bare
		// sdfpath.Path/*vtdict.Dict) goes through the general scalar codec
		// boxed as-is: a single type-tagged, length-prefixed blob entry.
		off, err := blob.put(ctx, func(buf *bytes.Buffer, c *writeCtx) error {
			return encodeScalar(buf, c, v)
		})
		if err != nil {
			return 0, err
		}
		t, _ := scalarTypeCodeOf(v)
		return repBoxed(t, off), nil
	}
}

// decodeFieldValue resolves rep back into a value.Value, unpacking any
// boxed form from blob.
func decodeFieldValue(ctx *readCtx, blob *blobReader, rep ValueRep) (value.Value, error) {
	switch rep.Type() {
	case TypeBool:
		return value.New(rep.AsBool()), nil
	case TypeInt:
		return value.New(rep.AsInt()), nil
	case TypeFloat:
		return value.New(rep.AsFloat()), nil
	case TypeString:
		return value.New(ctx.strings.at(rep.AsStringIndex())), nil
	case TypeToken:
		return value.New(ctx.tokens.at(rep.AsTokenIndex())), nil
	case TypePath:
		p, err := ctx.paths.at(rep.AsPathIndex())
		if err != nil {
			return value.Empty(), err
		}
		return value.New(p), nil
	case TypeInt64:
		v, err := blobDecodeAny(blob, ctx, rep.AsOffset(), func(r *bytes.Reader, c *readCtx) (any, error) {
			var u uint64
			if err := binary.Read(r, binary.LittleEndian, &u); err != nil {
				return nil, diag.Wrap(diag.CorruptFile, err, "read int64")
			}
			return int64(u), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(v.(int64)), nil
	case TypeDouble:
		v, err := blobDecodeAny(blob, ctx, rep.AsOffset(), func(r *bytes.Reader, c *readCtx) (any, error) {
			var bits [8]byte
			if _, err := io.ReadFull(r, bits[:]); err != nil {
				return nil, diag.Wrap(diag.CorruptFile, err, "read double")
			}
			return math.Float64frombits(binary.LittleEndian.Uint64(bits[:])), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(v.(float64)), nil
	case TypePathListOp:
		v, err := blobDecodeAny(blob, ctx, rep.AsOffset(), func(r *bytes.Reader, c *readCtx) (any, error) {
			return decodePathListOp(r, c)
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(v.(PathListOp)), nil
	case TypePayload:
		v, err := blobDecodeAny(blob, ctx, rep.AsOffset(), func(r *bytes.Reader, c *readCtx) (any, error) {
			p, isEmpty, err := decodePayload(r, c)
			if err != nil {
				return nil, err
			}
			return PayloadListOpFromCompact(p, isEmpty), nil
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(v.(PayloadListOp)), nil
	case TypePayloadListOp:
		v, err := blobDecodeAny(blob, ctx, rep.AsOffset(), func(r *bytes.Reader, c *readCtx) (any, error) {
			return decodePayloadListOp(r, c)
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(v.(PayloadListOp)), nil
	case TypeTimeSamples:
		// Conversion from the internal sorted two-vector form to the public
		// ordered-map exchange form happens only here, at read time (spec.md
		// §4.5.3).
		v, err := blobDecodeAny(blob, ctx, rep.AsOffset(), func(r *bytes.Reader, c *readCtx) (any, error) {
			return decodeTimeSamples(r, c)
		})
		if err != nil {
			return value.Empty(), err
		}
		return value.New(v.(timeSamplesField).ToSet()), nil
	case TypeDict:
		return blobDecodeScalar(blob, ctx, rep.AsOffset())
	default:
		return value.Empty(), diag.Newf(diag.CorruptFile, "unknown ValueRep type %d", rep.Type())
	}
}

func blobDecodeAny(blob *blobReader, ctx *readCtx, offset uint64, decode func(*bytes.Reader, *readCtx) (any, error)) (any, error) {
	return blob.decode(offset, ctx, decode)
}

func blobDecodeScalar(blob *blobReader, ctx *readCtx, offset uint64) (value.Value, error) {
	v, err := blob.decode(offset, ctx, func(r *bytes.Reader, c *readCtx) (any, error) {
		return decodeScalar(r, c)
	})
	if err != nil {
		return value.Empty(), err
	}
	return v.(value.Value), nil
}

func scalarTypeCodeOf(v value.Value) (TypeCode, bool) {
	switch v.Interface().(type) {
	case bool:
		return TypeBool, true
	case int32:
		return TypeInt, true
	case int64:
		return TypeInt64, true
	case float32:
		return TypeFloat, true
	case float64:
		return TypeDouble, true
	case string:
		return TypeString, true
	default:
		return TypeDict, true
	}
}
