package databuf

import (
	"errors"

	"github.com/scenewire/scenewire/wire"
)

var ErrOutOfRange = errors.New("databuf: chunk offset/count does not fit destination buffer")

// ReadChunk reads one WriteChunk/WriteChunkQuantized-encoded chunk from r
// into dest at the header's declared offset. It accepts either a matching
// scalar type (raw copy) or a PackedFloat* source feeding an f32/f64
// destination (unpacked via the chunk's origin/unit); any other
// combination is ErrTypeMismatch (spec.md §4.3).
func ReadChunk(r *wire.Reader, dest *Buffer) (count int, err error) {
	offset32, ok := r.ReadUint32()
	if !ok {
		return 0, ErrTruncated
	}
	cnt, ok := r.ReadUint16()
	if !ok {
		return 0, ErrTruncated
	}
	components, ok := r.ReadUint8()
	if !ok {
		return 0, ErrTruncated
	}
	wireType, ok := r.ReadUint8()
	if !ok {
		return 0, ErrTruncated
	}
	offset, count := int(offset32), int(cnt)
	if int(components) != dest.components {
		return 0, ErrTypeMismatch
	}
	if offset+count > dest.elementCount {
		return 0, ErrOutOfRange
	}
	srcType := ScalarType(wireType)

	switch {
	case srcType == dest.scalarType:
		return count, readRawInto(r, dest, offset, count)
	case srcType.IsPacked() && dest.scalarType.IsFloat():
		return count, readPackedInto(r, dest, offset, count, srcType)
	default:
		return 0, ErrTypeMismatch
	}
}

func readRawInto(r *wire.Reader, dest *Buffer, offset, count int) error {
	for e := offset; e < offset+count; e++ {
		for c := 0; c < dest.components; c++ {
			i := e*dest.stride + c
			if !readScalarInto(r, dest.raw, dest.scalarType, i) {
				return ErrTruncated
			}
		}
	}
	return nil
}

func readScalarInto(r *wire.Reader, raw any, t ScalarType, i int) bool {
	switch t {
	case I8:
		v, ok := r.ReadInt8()
		if ok {
			raw.([]int8)[i] = v
		}
		return ok
	case U8:
		v, ok := r.ReadUint8()
		if ok {
			raw.([]uint8)[i] = v
		}
		return ok
	case I16:
		v, ok := r.ReadInt16()
		if ok {
			raw.([]int16)[i] = v
		}
		return ok
	case U16:
		v, ok := r.ReadUint16()
		if ok {
			raw.([]uint16)[i] = v
		}
		return ok
	case I32:
		v, ok := r.ReadInt32()
		if ok {
			raw.([]int32)[i] = v
		}
		return ok
	case U32:
		v, ok := r.ReadUint32()
		if ok {
			raw.([]uint32)[i] = v
		}
		return ok
	case I64:
		v, ok := r.ReadInt64()
		if ok {
			raw.([]int64)[i] = v
		}
		return ok
	case U64:
		v, ok := r.ReadUint64()
		if ok {
			raw.([]uint64)[i] = v
		}
		return ok
	case F32:
		v, ok := r.ReadFloat32()
		if ok {
			raw.([]float32)[i] = v
		}
		return ok
	case F64:
		v, ok := r.ReadFloat64()
		if ok {
			raw.([]float64)[i] = v
		}
		return ok
	default:
		return false
	}
}

// readPackedInto reads a PackedFloat16/32 chunk (origin in dest's own
// float type + a f32 quantisation unit, then count*components packed
// integers) and unpacks it into dest.
func readPackedInto(r *wire.Reader, dest *Buffer, offset, count int, srcType ScalarType) error {
	origin := make([]float64, dest.components)
	for c := range origin {
		var v float64
		var ok bool
		if dest.scalarType == F32 {
			var f32 float32
			f32, ok = r.ReadFloat32()
			v = float64(f32)
		} else {
			v, ok = r.ReadFloat64()
		}
		if !ok {
			return ErrTruncated
		}
		origin[c] = v
	}
	unit, ok := r.ReadFloat32()
	if !ok {
		return ErrTruncated
	}
	for e := offset; e < offset+count; e++ {
		for c := 0; c < dest.components; c++ {
			var packed int64
			if srcType == PackedFloat16 {
				v, ok := r.ReadInt16()
				if !ok {
					return ErrTruncated
				}
				packed = int64(v)
			} else {
				v, ok := r.ReadInt32()
				if !ok {
					return ErrTruncated
				}
				packed = int64(v)
			}
			value := Unpack(packed, origin[c], unit)
			i := e*dest.stride + c
			if dest.scalarType == F32 {
				dest.raw.([]float32)[i] = float32(value)
			} else {
				dest.raw.([]float64)[i] = value
			}
		}
	}
	return nil
}
