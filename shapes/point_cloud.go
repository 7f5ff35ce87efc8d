package shapes

import (
	"github.com/scenewire/scenewire/databuf"
	"github.com/scenewire/scenewire/wire"
)

// PointCloudCreate is the PointCloud Create tail (spec.md §4.5).
type PointCloudCreate struct {
	Header     CreateHeader
	Attrs      Attributes
	ResourceID uint32
	IndexCount uint32
	PointSize  float32
}

// Write emits a PointCloud Create message.
func (c PointCloudCreate) Write(w *wire.Writer) bool {
	w.Reset(PointCloud, MsgCreate)
	if !WriteCreateHeader(w, c.Header) || !c.Attrs.Write(w, c.Header.Flags&FlagDoublePrecision != 0) {
		return false
	}
	return w.WriteUint32(c.ResourceID) && w.WriteUint32(c.IndexCount) && w.WriteFloat32(c.PointSize)
}

// ReadPointCloudCreate reads a PointCloud Create message body.
func ReadPointCloudCreate(r *wire.Reader) (PointCloudCreate, error) {
	var c PointCloudCreate
	h, err := ReadCreateHeader(r)
	if err != nil {
		return c, err
	}
	attrs, ok := ReadAttributes(r, h.Flags&FlagDoublePrecision != 0)
	if !ok {
		return c, wire.ErrTruncated
	}
	rid, ok1 := r.ReadUint32()
	ic, ok2 := r.ReadUint32()
	ps, ok3 := r.ReadFloat32()
	if !ok1 || !ok2 || !ok3 {
		return c, wire.ErrTruncated
	}
	c.Header, c.Attrs, c.ResourceID, c.IndexCount, c.PointSize = h, attrs, rid, ic, ps
	return c, nil
}

// WritePointCloudData emits a Data message restricting the displayed
// subset to an index-only DataBuffer (spec.md §4.5).
func WritePointCloudData(w *wire.Writer, objectID uint32, indices *databuf.Buffer, offset, byteLimit int) (int, error) {
	w.Reset(PointCloud, MsgData)
	if !w.WriteUint32(objectID) {
		return 0, wire.ErrTruncated
	}
	return indices.WriteChunk(w, offset, byteLimit)
}
