package shapes

import "github.com/scenewire/scenewire/wire"

// CategoryName is the Category/Create message recovered from
// original_source/ (SPEC_FULL.md §9.1): names a shape category and places
// it in a parent/child tree the viewer uses for UI grouping/filtering.
type CategoryName struct {
	CategoryID    uint16
	ParentID      uint16
	Name          string
	DefaultActive bool
}

// Write emits a Category/Create message.
func (c CategoryName) Write(w *wire.Writer) bool {
	w.Reset(wire.RoutingCategory, MsgCreate)
	active := uint8(0)
	if c.DefaultActive {
		active = 1
	}
	return w.WriteUint16(c.CategoryID) && w.WriteUint16(c.ParentID) &&
		w.WriteUint8(active) && w.WriteString(c.Name)
}

// ReadCategoryName reads a Category/Create message body.
func ReadCategoryName(r *wire.Reader) (CategoryName, error) {
	var c CategoryName
	categoryID, ok := r.ReadUint16()
	if !ok {
		return c, wire.ErrTruncated
	}
	parentID, ok := r.ReadUint16()
	if !ok {
		return c, wire.ErrTruncated
	}
	active, ok := r.ReadUint8()
	if !ok {
		return c, wire.ErrTruncated
	}
	name, ok := r.ReadString()
	if !ok {
		return c, wire.ErrTruncated
	}
	c.CategoryID, c.ParentID, c.DefaultActive, c.Name = categoryID, parentID, active != 0, name
	return c, nil
}

// CategorySetActive is the Category/Update message toggling a category's
// active state at runtime.
type CategorySetActive struct {
	CategoryID uint16
	Active     bool
}

// Write emits a Category/Update message.
func (c CategorySetActive) Write(w *wire.Writer) bool {
	w.Reset(wire.RoutingCategory, MsgUpdate)
	active := uint8(0)
	if c.Active {
		active = 1
	}
	return w.WriteUint16(c.CategoryID) && w.WriteUint8(active)
}

// ReadCategorySetActive reads a Category/Update message body.
func ReadCategorySetActive(r *wire.Reader) (CategorySetActive, error) {
	var c CategorySetActive
	categoryID, ok := r.ReadUint16()
	if !ok {
		return c, wire.ErrTruncated
	}
	active, ok := r.ReadUint8()
	if !ok {
		return c, wire.ErrTruncated
	}
	c.CategoryID, c.Active = categoryID, active != 0
	return c, nil
}

// Material is the Material/Create and Material/Destroy message pair
// recovered from original_source/: an opaque named material/shader the
// server associates with a shape's render pipeline and never interprets
// (SPEC_FULL.md §9.1).
type Material struct {
	MaterialID uint32
	Name       string
}

// WriteCreate emits a Material/Create message.
func (m Material) WriteCreate(w *wire.Writer) bool {
	w.Reset(wire.RoutingMaterial, MsgCreate)
	return w.WriteUint32(m.MaterialID) && w.WriteString(m.Name)
}

// ReadMaterialCreate reads a Material/Create message body.
func ReadMaterialCreate(r *wire.Reader) (Material, error) {
	var m Material
	id, ok := r.ReadUint32()
	if !ok {
		return m, wire.ErrTruncated
	}
	name, ok := r.ReadString()
	if !ok {
		return m, wire.ErrTruncated
	}
	m.MaterialID, m.Name = id, name
	return m, nil
}

// WriteMaterialDestroy emits a Material/Destroy message.
func WriteMaterialDestroy(w *wire.Writer, materialID uint32) bool {
	w.Reset(wire.RoutingMaterial, MsgDestroy)
	return w.WriteUint32(materialID)
}

// ReadMaterialDestroy reads a Material/Destroy message body.
func ReadMaterialDestroy(r *wire.Reader) (uint32, bool) { return r.ReadUint32() }
