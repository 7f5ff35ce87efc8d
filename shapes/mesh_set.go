package shapes

import "github.com/scenewire/scenewire/wire"

// MeshSetPart is one (resource_id, attributes) entry in a MeshSet Create tail.
type MeshSetPart struct {
	ResourceID uint32
	Attrs      Attributes
}

// MeshSetCreate is the MeshSet Create tail (spec.md §4.5): no Data message follows.
type MeshSetCreate struct {
	Header CreateHeader
	Attrs  Attributes
	Parts  []MeshSetPart
}

// Write emits a MeshSet Create message.
func (c MeshSetCreate) Write(w *wire.Writer) bool {
	w.Reset(MeshSet, MsgCreate)
	double := c.Header.Flags&FlagDoublePrecision != 0
	if !WriteCreateHeader(w, c.Header) || !c.Attrs.Write(w, double) {
		return false
	}
	if !w.WriteUint16(uint16(len(c.Parts))) {
		return false
	}
	for _, p := range c.Parts {
		if !w.WriteUint32(p.ResourceID) || !p.Attrs.Write(w, double) {
			return false
		}
	}
	return true
}

// ReadMeshSetCreate reads a MeshSet Create message body.
func ReadMeshSetCreate(r *wire.Reader) (MeshSetCreate, error) {
	var c MeshSetCreate
	h, err := ReadCreateHeader(r)
	if err != nil {
		return c, err
	}
	double := h.Flags&FlagDoublePrecision != 0
	attrs, ok := ReadAttributes(r, double)
	if !ok {
		return c, wire.ErrTruncated
	}
	partCount, ok := r.ReadUint16()
	if !ok {
		return c, wire.ErrTruncated
	}
	parts := make([]MeshSetPart, partCount)
	for i := range parts {
		rid, ok1 := r.ReadUint32()
		if !ok1 {
			return c, wire.ErrTruncated
		}
		pa, ok2 := ReadAttributes(r, double)
		if !ok2 {
			return c, wire.ErrTruncated
		}
		parts[i] = MeshSetPart{ResourceID: rid, Attrs: pa}
	}
	c.Header, c.Attrs, c.Parts = h, attrs, parts
	return c, nil
}
