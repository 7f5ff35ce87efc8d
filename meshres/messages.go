// Package meshres implements mesh resource encoding (spec.md §4.6) and the
// resource packer that streams a resource's vertex/index/colour/normal/uv
// buffers across size-limited packets (spec.md §4.7).
package meshres

import (
	"github.com/scenewire/scenewire/databuf"
	"github.com/scenewire/scenewire/wire"
)

// Message ids under wire.RoutingMesh.
const (
	MsgDestroy uint16 = iota + 1
	MsgCreate
	MsgVertex
	MsgIndex
	MsgVertexColour
	MsgNormal
	MsgUV
	MsgSetMaterial
	MsgRedefine
	MsgFinalise
)

// Flags (u16).
const (
	FlagDoublePrecision uint16 = 1 << iota
)

// Draw types. For DrawVoxels, the per-vertex Normal buffer is reinterpreted
// as a per-voxel half-extent rather than a lighting normal
// (SPEC_FULL.md §9.1).
const (
	DrawPoints uint8 = iota
	DrawLines
	DrawTriangles
	DrawVoxels
	DrawQuads // reserved
)

// Create is the mesh resource Create/Redefine message body.
type Create struct {
	ResourceID  uint32
	VertexCount uint32
	IndexCount  uint32
	Flags       uint16
	DrawScale   float32
	Tint        uint32
	Translation [3]float64
	Rotation    [4]float64
	Scale       [3]float64
}

func writeVec(w *wire.Writer, v []float64, double bool) bool {
	for _, c := range v {
		if double {
			if !w.WriteFloat64(c) {
				return false
			}
		} else if !w.WriteFloat32(float32(c)) {
			return false
		}
	}
	return true
}

func readVec(r *wire.Reader, v []float64, double bool) bool {
	for i := range v {
		if double {
			f, ok := r.ReadFloat64()
			if !ok {
				return false
			}
			v[i] = f
		} else {
			f, ok := r.ReadFloat32()
			if !ok {
				return false
			}
			v[i] = float64(f)
		}
	}
	return true
}

func (c Create) write(w *wire.Writer, msg uint16) bool {
	w.Reset(wire.RoutingMesh, msg)
	double := c.Flags&FlagDoublePrecision != 0
	return w.WriteUint32(c.ResourceID) && w.WriteUint32(c.VertexCount) && w.WriteUint32(c.IndexCount) &&
		w.WriteUint16(c.Flags) && w.WriteFloat32(c.DrawScale) && w.WriteUint32(c.Tint) &&
		writeVec(w, c.Translation[:], double) && writeVec(w, c.Rotation[:], double) && writeVec(w, c.Scale[:], double)
}

// WriteCreate emits a Mesh/Create message.
func (c Create) WriteCreate(w *wire.Writer) bool { return c.write(w, MsgCreate) }

// WriteRedefine emits a Mesh/Redefine message (same payload as Create).
func (c Create) WriteRedefine(w *wire.Writer) bool { return c.write(w, MsgRedefine) }

// ReadCreate reads a Mesh/Create or Mesh/Redefine message body.
func ReadCreate(r *wire.Reader) (Create, error) {
	var c Create
	resourceID, ok := r.ReadUint32()
	if !ok {
		return c, wire.ErrTruncated
	}
	vc, ok1 := r.ReadUint32()
	ic, ok2 := r.ReadUint32()
	flags, ok3 := r.ReadUint16()
	if !ok1 || !ok2 || !ok3 {
		return c, wire.ErrTruncated
	}
	scale, ok4 := r.ReadFloat32()
	tint, ok5 := r.ReadUint32()
	if !ok4 || !ok5 {
		return c, wire.ErrTruncated
	}
	double := flags&FlagDoublePrecision != 0
	c.ResourceID, c.VertexCount, c.IndexCount, c.Flags, c.DrawScale, c.Tint = resourceID, vc, ic, flags, scale, tint
	if !readVec(r, c.Translation[:], double) || !readVec(r, c.Rotation[:], double) || !readVec(r, c.Scale[:], double) {
		return c, wire.ErrTruncated
	}
	return c, nil
}

// WriteDestroy emits a Mesh/Destroy message.
func WriteDestroy(w *wire.Writer, resourceID uint32) bool {
	w.Reset(wire.RoutingMesh, MsgDestroy)
	return w.WriteUint32(resourceID)
}

// ReadDestroy reads a Mesh/Destroy message body.
func ReadDestroy(r *wire.Reader) (uint32, bool) { return r.ReadUint32() }

// WriteFinalise emits a Mesh/Finalise message.
func WriteFinalise(w *wire.Writer, resourceID uint32, flags uint16) bool {
	w.Reset(wire.RoutingMesh, MsgFinalise)
	return w.WriteUint32(resourceID) && w.WriteUint16(flags)
}

// ReadFinalise reads a Mesh/Finalise message body.
func ReadFinalise(r *wire.Reader) (resourceID uint32, flags uint16, ok bool) {
	resourceID, ok = r.ReadUint32()
	if !ok {
		return 0, 0, false
	}
	flags, ok = r.ReadUint16()
	return resourceID, flags, ok
}

// writeBufferChunk is the shared encoding for Vertex/Index/VertexColour/Normal/UV:
// resource_id u32 followed by one DataBuffer chunk.
func writeBufferChunk(w *wire.Writer, msg uint16, resourceID uint32, buf *databuf.Buffer, offset, byteLimit int) (int, error) {
	w.Reset(wire.RoutingMesh, msg)
	if !w.WriteUint32(resourceID) {
		return 0, wire.ErrTruncated
	}
	return buf.WriteChunk(w, offset, byteLimit)
}

// WriteVertexChunk emits one Mesh/Vertex message chunk.
func WriteVertexChunk(w *wire.Writer, resourceID uint32, buf *databuf.Buffer, offset, byteLimit int) (int, error) {
	return writeBufferChunk(w, MsgVertex, resourceID, buf, offset, byteLimit)
}

// WriteIndexChunk emits one Mesh/Index message chunk.
func WriteIndexChunk(w *wire.Writer, resourceID uint32, buf *databuf.Buffer, offset, byteLimit int) (int, error) {
	return writeBufferChunk(w, MsgIndex, resourceID, buf, offset, byteLimit)
}

// WriteVertexColourChunk emits one Mesh/VertexColour message chunk.
func WriteVertexColourChunk(w *wire.Writer, resourceID uint32, buf *databuf.Buffer, offset, byteLimit int) (int, error) {
	return writeBufferChunk(w, MsgVertexColour, resourceID, buf, offset, byteLimit)
}

// WriteNormalChunk emits one Mesh/Normal message chunk. For a resource
// whose draw type is DrawVoxels, this buffer carries per-voxel half-extents
// rather than lighting normals.
func WriteNormalChunk(w *wire.Writer, resourceID uint32, buf *databuf.Buffer, offset, byteLimit int) (int, error) {
	return writeBufferChunk(w, MsgNormal, resourceID, buf, offset, byteLimit)
}

// WriteUVChunk emits one Mesh/UV message chunk.
func WriteUVChunk(w *wire.Writer, resourceID uint32, buf *databuf.Buffer, offset, byteLimit int) (int, error) {
	return writeBufferChunk(w, MsgUV, resourceID, buf, offset, byteLimit)
}

// ReadBufferHeader reads the resource_id prefix shared by every
// Vertex/Index/VertexColour/Normal/UV message, leaving r positioned at the
// DataBuffer chunk.
func ReadBufferHeader(r *wire.Reader) (resourceID uint32, ok bool) { return r.ReadUint32() }
