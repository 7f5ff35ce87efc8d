package databuf

import "github.com/scenewire/scenewire/wire"

const chunkHeaderSize = 4 + 2 + 1 + 1 // offset, count, components, data_type

// WriteChunk emits a header (offset, count, components, data_type) followed
// by up to count elements starting at offset, in the buffer's native
// scalar type, choosing count as the maximum that fits into
// min(byteLimit, w.Remaining()) after the header (spec.md §4.3). It
// returns the number of elements written, which may be less than
// ElementCount()-offset for a large buffer split across many packets.
func (b *Buffer) WriteChunk(w *wire.Writer, offset, byteLimit int) (int, error) {
	avail := w.Remaining()
	if byteLimit < avail {
		avail = byteLimit
	}
	avail -= chunkHeaderSize
	if avail <= 0 || offset >= b.elementCount {
		return 0, ErrTruncated
	}
	elemBytes := b.scalarType.Size() * b.components
	count := avail / elemBytes
	if count > b.elementCount-offset {
		count = b.elementCount - offset
	}
	if count > 0xFFFF {
		count = 0xFFFF
	}
	if count <= 0 {
		return 0, ErrTruncated
	}
	if !writeChunkHeader(w, offset, count, b.components, b.scalarType) {
		return 0, ErrTruncated
	}
	if !b.writeElementsRaw(w, offset, count) {
		return 0, ErrTruncated
	}
	return count, nil
}

func writeChunkHeader(w *wire.Writer, offset, count, components int, t ScalarType) bool {
	return w.WriteUint32(uint32(offset)) &&
		w.WriteUint16(uint16(count)) &&
		w.WriteUint8(uint8(components)) &&
		w.WriteUint8(uint8(t))
}

func (b *Buffer) writeElementsRaw(w *wire.Writer, offset, count int) bool {
	for e := offset; e < offset+count; e++ {
		for c := 0; c < b.components; c++ {
			i := e*b.stride + c
			if !writeScalar(w, b.raw, b.scalarType, i) {
				return false
			}
		}
	}
	return true
}

func writeScalar(w *wire.Writer, raw any, t ScalarType, i int) bool {
	switch t {
	case I8:
		return w.WriteInt8(raw.([]int8)[i])
	case U8:
		return w.WriteUint8(raw.([]uint8)[i])
	case I16:
		return w.WriteInt16(raw.([]int16)[i])
	case U16:
		return w.WriteUint16(raw.([]uint16)[i])
	case I32:
		return w.WriteInt32(raw.([]int32)[i])
	case U32:
		return w.WriteUint32(raw.([]uint32)[i])
	case I64:
		return w.WriteInt64(raw.([]int64)[i])
	case U64:
		return w.WriteUint64(raw.([]uint64)[i])
	case F32:
		return w.WriteFloat32(raw.([]float32)[i])
	case F64:
		return w.WriteFloat64(raw.([]float64)[i])
	default:
		return false
	}
}

// QuantisedTarget selects the packed wire type and the quantisation used
// to write a float Buffer in reduced form (spec.md §4.3).
type QuantisedTarget struct {
	Type   ScalarType // PackedFloat16 or PackedFloat32
	Origin []float64  // per-component origin, len == Buffer.Components()
	Unit   float32    // quantisation_unit
}

// WriteChunkQuantized behaves like WriteChunk but packs each component as
// round((value-origin[c])/unit) into the target's integer width, preceded
// by the origin (in the source float type) and the quantisation unit. The
// whole chunk is computed before anything is written to w: if any element
// would lose more than one quantisation unit on round-trip, the call fails
// with ErrQuantisationOverflow and w is untouched.
func (b *Buffer) WriteChunkQuantized(w *wire.Writer, offset, byteLimit int, q QuantisedTarget) (int, error) {
	if !b.scalarType.IsFloat() {
		return 0, ErrNotFloat
	}
	if len(q.Origin) != b.components {
		return 0, ErrTypeMismatch
	}
	originSize := b.scalarType.Size() * b.components // origin encoded in the *source* float type
	header := chunkHeaderSize + originSize + 4        // + quantisation_unit f32
	avail := w.Remaining()
	if byteLimit < avail {
		avail = byteLimit
	}
	avail -= header
	if avail <= 0 || offset >= b.elementCount {
		return 0, ErrTruncated
	}
	packedSize := q.Type.Size() * b.components
	count := avail / packedSize
	if count > b.elementCount-offset {
		count = b.elementCount - offset
	}
	if count > 0xFFFF {
		count = 0xFFFF
	}
	if count <= 0 {
		return 0, ErrTruncated
	}

	packed, err := b.packElements(offset, count, q)
	if err != nil {
		return 0, err
	}

	if !writeChunkHeader(w, offset, count, b.components, q.Type) {
		return 0, ErrTruncated
	}
	for c := 0; c < b.components; c++ {
		if !writeFloatScalar(w, b.scalarType, q.Origin[c]) {
			return 0, ErrTruncated
		}
	}
	if !w.WriteFloat32(q.Unit) {
		return 0, ErrTruncated
	}
	for _, v := range packed {
		if q.Type == PackedFloat16 {
			if !w.WriteInt16(int16(v)) {
				return 0, ErrTruncated
			}
		} else {
			if !w.WriteInt32(int32(v)) {
				return 0, ErrTruncated
			}
		}
	}
	return count, nil
}

// packElements computes the packed integer for every (element, component)
// in [offset, offset+count), validating the quantisation bound up front so
// the caller never emits a partial element.
func (b *Buffer) packElements(offset, count int, q QuantisedTarget) ([]int64, error) {
	out := make([]int64, 0, count*b.components)
	for e := offset; e < offset+count; e++ {
		for c := 0; c < b.components; c++ {
			value, _ := b.AtFloat64(e, c)
			packed := Pack(value, q.Origin[c], q.Unit)
			if q.Type == PackedFloat16 {
				packed = int64(int16(packed))
			} else {
				packed = int64(int32(packed))
			}
			if !WithinQuantisation(packed, value, q.Origin[c], q.Unit) {
				return nil, ErrQuantisationOverflow
			}
			out = append(out, packed)
		}
	}
	return out, nil
}

func writeFloatScalar(w *wire.Writer, t ScalarType, v float64) bool {
	if t == F32 {
		return w.WriteFloat32(float32(v))
	}
	return w.WriteFloat64(v)
}
