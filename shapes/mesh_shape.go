package shapes

import (
	"github.com/scenewire/scenewire/databuf"
	"github.com/scenewire/scenewire/wire"
)

// MeshShapeCreate is the MeshShape Create tail (spec.md §4.5).
type MeshShapeCreate struct {
	Header      CreateHeader
	Attrs       Attributes
	VertexCount uint32
	IndexCount  uint32
	DrawScale   float32
	DrawType    uint8
}

// Write emits a MeshShape Create message.
func (c MeshShapeCreate) Write(w *wire.Writer) bool {
	w.Reset(MeshShape, MsgCreate)
	if !WriteCreateHeader(w, c.Header) {
		return false
	}
	if !c.Attrs.Write(w, c.Header.Flags&FlagDoublePrecision != 0) {
		return false
	}
	return w.WriteUint32(c.VertexCount) && w.WriteUint32(c.IndexCount) &&
		w.WriteFloat32(c.DrawScale) && w.WriteUint8(c.DrawType)
}

// ReadMeshShapeCreate reads a MeshShape Create message body.
func ReadMeshShapeCreate(r *wire.Reader) (MeshShapeCreate, error) {
	var c MeshShapeCreate
	h, err := ReadCreateHeader(r)
	if err != nil {
		return c, err
	}
	attrs, ok := ReadAttributes(r, h.Flags&FlagDoublePrecision != 0)
	if !ok {
		return c, wire.ErrTruncated
	}
	vc, ok1 := r.ReadUint32()
	ic, ok2 := r.ReadUint32()
	scale, ok3 := r.ReadFloat32()
	drawType, ok4 := r.ReadUint8()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return c, wire.ErrTruncated
	}
	c.Header, c.Attrs, c.VertexCount, c.IndexCount, c.DrawScale, c.DrawType = h, attrs, vc, ic, scale, drawType
	return c, nil
}

// WriteMeshShapeData emits one Data message: DataTypeId followed by one
// WriteChunk call against buf. It returns the element count written, to let
// the caller drive tiling across multiple packets (spec.md scenario 3).
func WriteMeshShapeData(w *wire.Writer, objectID uint32, dataType uint16, buf *databuf.Buffer, offset, byteLimit int) (int, error) {
	w.Reset(MeshShape, MsgData)
	if !w.WriteUint32(objectID) || !w.WriteUint16(dataType) {
		return 0, wire.ErrTruncated
	}
	return buf.WriteChunk(w, offset, byteLimit)
}

// ReadMeshShapeData reads a Data message's object_id and DataTypeId,
// leaving r positioned at the DataBuffer chunk for the caller to ReadChunk
// into a destination sized for dataType.
func ReadMeshShapeData(r *wire.Reader) (objectID uint32, dataType uint16, err error) {
	objectID, ok := r.ReadUint32()
	if !ok {
		return 0, 0, wire.ErrTruncated
	}
	dataType, ok = r.ReadUint16()
	if !ok {
		return 0, 0, wire.ErrTruncated
	}
	return objectID, dataType, nil
}
