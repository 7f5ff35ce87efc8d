package databuf

import (
	"errors"
	"fmt"
)

// Number is the set of Go types a Buffer may be backed by.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Buffer is a typed, possibly-strided view over an array of scalars: the
// vertex/index/colour/uv payload of a mesh resource or a MeshShape Data
// message (spec.md §3, §4.3).
type Buffer struct {
	raw          any // []int8 | []uint8 | ... | []float64, len == elementCount*stride
	elementCount int
	components   int // channels per element ("xyz" == 3), <= MaxComponents
	stride       int // components per element as laid out in raw; stride >= components
	scalarType   ScalarType
	owned        bool // true if Duplicate()-allocated
	writable     bool
}

// MaxComponents bounds the component count per spec.md §3.
const MaxComponents = 16

var (
	ErrInvalidComponents = errors.New("databuf: components must be in [1,16] and <= stride")
	ErrShapeMismatch     = errors.New("databuf: data length is not a multiple of stride")
)

func scalarTypeOf[T Number]() ScalarType {
	var z T
	switch any(z).(type) {
	case int8:
		return I8
	case uint8:
		return U8
	case int16:
		return I16
	case uint16:
		return U16
	case int32:
		return I32
	case uint32:
		return U32
	case int64:
		return I64
	case uint64:
		return U64
	case float32:
		return F32
	case float64:
		return F64
	default:
		panic(fmt.Sprintf("databuf: unsupported scalar type %T", z))
	}
}

// Borrow wraps data as a non-owning, strided Buffer: stride components per
// element, only the first `components` of each stride actually used. The
// caller must keep data alive and unmodified-by-others for the Buffer's
// lifetime (Go's GC keeps it allocated; this is about aliasing, not memory
// safety).
func Borrow[T Number](data []T, components, stride int) (*Buffer, error) {
	if components <= 0 || components > MaxComponents || stride < components {
		return nil, ErrInvalidComponents
	}
	if stride > 0 && len(data)%stride != 0 {
		return nil, ErrShapeMismatch
	}
	count := 0
	if stride > 0 {
		count = len(data) / stride
	}
	return &Buffer{
		raw:          data,
		elementCount: count,
		components:   components,
		stride:       stride,
		scalarType:   scalarTypeOf[T](),
		writable:     true,
	}, nil
}

// BorrowVec wraps a dense vector-of-T array (stride == components), e.g. a
// []Vec3-shaped []float32 with components=3.
func BorrowVec[T Number](data []T, components int) (*Buffer, error) {
	return Borrow(data, components, components)
}

// Duplicate densely packs b (stride := components) into freshly allocated,
// owned storage and returns the copy; b is left untouched.
func (b *Buffer) Duplicate() *Buffer {
	switch raw := b.raw.(type) {
	case []int8:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []uint8:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []int16:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []uint16:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []int32:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []uint32:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []int64:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []uint64:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []float32:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	case []float64:
		return dupInto(b, packDense(raw, b.elementCount, b.components, b.stride))
	default:
		panic("databuf: corrupt buffer")
	}
}

func packDense[T Number](src []T, elementCount, components, stride int) []T {
	if stride == components {
		dense := make([]T, len(src))
		copy(dense, src)
		return dense
	}
	dense := make([]T, elementCount*components)
	for e := 0; e < elementCount; e++ {
		copy(dense[e*components:(e+1)*components], src[e*stride:e*stride+components])
	}
	return dense
}

func dupInto[T Number](b *Buffer, dense []T) *Buffer {
	return &Buffer{
		raw:          dense,
		elementCount: b.elementCount,
		components:   b.components,
		stride:       b.components,
		scalarType:   b.scalarType,
		owned:        true,
		writable:     true,
	}
}

func (b *Buffer) ElementCount() int     { return b.elementCount }
func (b *Buffer) Components() int       { return b.components }
func (b *Buffer) Stride() int           { return b.stride }
func (b *Buffer) Type() ScalarType      { return b.scalarType }
func (b *Buffer) Owned() bool           { return b.owned }
func (b *Buffer) Writable() bool        { return b.writable }
func (b *Buffer) SetWritable(w bool)    { b.writable = w }

// index returns the flat raw index for (element, component), or -1 if out of range.
func (b *Buffer) index(element, component int) int {
	if element < 0 || element >= b.elementCount || component < 0 || component >= b.components {
		return -1
	}
	return element*b.stride + component
}

// AtFloat64 reads (element, component) performing a checked widening cast
// to float64 regardless of the buffer's native scalar type.
func (b *Buffer) AtFloat64(element, component int) (float64, bool) {
	i := b.index(element, component)
	if i < 0 {
		return 0, false
	}
	switch raw := b.raw.(type) {
	case []int8:
		return float64(raw[i]), true
	case []uint8:
		return float64(raw[i]), true
	case []int16:
		return float64(raw[i]), true
	case []uint16:
		return float64(raw[i]), true
	case []int32:
		return float64(raw[i]), true
	case []uint32:
		return float64(raw[i]), true
	case []int64:
		return float64(raw[i]), true
	case []uint64:
		return float64(raw[i]), true
	case []float32:
		return float64(raw[i]), true
	case []float64:
		return raw[i], true
	default:
		return 0, false
	}
}

// AtInt64 reads (element, component) as int64, failing (ok=false) if the
// native value cannot be represented exactly (e.g. reading a fractional
// float, or a uint64 too large for int64) -- the "checked static cast" of
// spec.md §4.3.
func (b *Buffer) AtInt64(element, component int) (v int64, ok bool) {
	i := b.index(element, component)
	if i < 0 {
		return 0, false
	}
	switch raw := b.raw.(type) {
	case []int8:
		return int64(raw[i]), true
	case []uint8:
		return int64(raw[i]), true
	case []int16:
		return int64(raw[i]), true
	case []uint16:
		return int64(raw[i]), true
	case []int32:
		return int64(raw[i]), true
	case []uint32:
		return int64(raw[i]), true
	case []int64:
		return raw[i], true
	case []uint64:
		if raw[i] > 1<<63-1 {
			return 0, false
		}
		return int64(raw[i]), true
	case []float32:
		f := raw[i]
		if f != float32(int64(f)) {
			return 0, false
		}
		return int64(f), true
	case []float64:
		f := raw[i]
		if f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}
