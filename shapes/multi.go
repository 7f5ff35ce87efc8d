package shapes

import "github.com/scenewire/scenewire/wire"

// MultiShapeCreate is the Create-message continuation for a shape created
// with FlagMultiShape set: shape_count (the total number of children) and
// payload_count (how many child attribute records fit in this message),
// followed by that many records (spec.md §4.5, scenario 5).
type MultiShapeCreate struct {
	Header     CreateHeader // Flags must carry FlagMultiShape
	Attrs      Attributes   // global transform applied to every child
	ShapeCount uint32
	Children   []Attributes // len() == payload_count
}

// Write emits a MultiShape Create message for the given base shape kind.
func (c MultiShapeCreate) Write(w *wire.Writer, kind Kind) bool {
	w.Reset(kind, MsgCreate)
	double := c.Header.Flags&FlagDoublePrecision != 0
	if !WriteCreateHeader(w, c.Header) || !c.Attrs.Write(w, double) {
		return false
	}
	if !w.WriteUint32(c.ShapeCount) || !w.WriteUint16(uint16(len(c.Children))) {
		return false
	}
	for _, ch := range c.Children {
		if !ch.Write(w, double) {
			return false
		}
	}
	return true
}

// ReadMultiShapeCreate reads a MultiShape Create message body.
func ReadMultiShapeCreate(r *wire.Reader) (MultiShapeCreate, error) {
	var c MultiShapeCreate
	h, err := ReadCreateHeader(r)
	if err != nil {
		return c, err
	}
	double := h.Flags&FlagDoublePrecision != 0
	attrs, ok := ReadAttributes(r, double)
	if !ok {
		return c, wire.ErrTruncated
	}
	shapeCount, ok := r.ReadUint32()
	if !ok {
		return c, wire.ErrTruncated
	}
	payloadCount, ok := r.ReadUint16()
	if !ok {
		return c, wire.ErrTruncated
	}
	children := make([]Attributes, payloadCount)
	for i := range children {
		ch, ok := ReadAttributes(r, double)
		if !ok {
			return c, wire.ErrTruncated
		}
		children[i] = ch
	}
	c.Header, c.Attrs, c.ShapeCount, c.Children = h, attrs, shapeCount, children
	return c, nil
}

// MultiShapeData carries overflow children for a MultiShape whose
// payload_count in Create fell short of shape_count: the same attribute
// records, prefixed by the owning object_id instead of shape_count
// (spec.md §4.5).
type MultiShapeData struct {
	ObjectID uint32
	Children []Attributes
}

// Write emits a MultiShape Data message.
func (d MultiShapeData) Write(w *wire.Writer, kind Kind, double bool) bool {
	w.Reset(kind, MsgData)
	if !w.WriteUint32(d.ObjectID) || !w.WriteUint16(uint16(len(d.Children))) {
		return false
	}
	for _, ch := range d.Children {
		if !ch.Write(w, double) {
			return false
		}
	}
	return true
}

// ReadMultiShapeData reads a MultiShape Data message body.
func ReadMultiShapeData(r *wire.Reader, double bool) (MultiShapeData, error) {
	var d MultiShapeData
	objectID, ok := r.ReadUint32()
	if !ok {
		return d, wire.ErrTruncated
	}
	count, ok := r.ReadUint16()
	if !ok {
		return d, wire.ErrTruncated
	}
	children := make([]Attributes, count)
	for i := range children {
		ch, ok := ReadAttributes(r, double)
		if !ok {
			return d, wire.ErrTruncated
		}
		children[i] = ch
	}
	d.ObjectID, d.Children = objectID, children
	return d, nil
}
