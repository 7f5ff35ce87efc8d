// Package shapes encodes the shape entity wire messages of spec.md §3,
// §4.5: Create/Data/Update/Destroy for each shape kind, plus the Category
// and Material routing messages recovered from original_source/
// (SPEC_FULL.md §9.1).
package shapes

import (
	"errors"

	"github.com/scenewire/scenewire/wire"
)

// Kind is a shape's routing id, in RoutingShapeBase.. space.
type Kind = uint16

const (
	Sphere Kind = wire.RoutingShapeBase + iota
	Box
	Cone
	Cylinder
	Capsule
	Plane
	Star
	Arrow
	MeshShape
	MeshSet
	PointCloud
	Text3D
	Text2D
	Pose
)

// Object message ids, shared by every shape kind's routing id.
const (
	MsgCreate uint16 = iota
	MsgUpdate
	MsgData
	MsgDestroy
)

// Shape flags (u16), spec.md §3.
const (
	FlagDoublePrecision uint16 = 1 << iota
	FlagWireframe
	FlagTransparent
	FlagTwoSided
	FlagReplace
	FlagMultiShape
	FlagSkipResources
	_ // bit 7 unused
	FlagUserBase
)

// Update-only flags; LimitedAttributes and friends share bit values with
// the Create-only flags above (e.g. FlagUserBase) because they only ever
// appear on an Update message.
const (
	FlagLimitedAttributes uint16 = 1 << 8
	FlagPosition          uint16 = 1 << 9
	FlagRotation          uint16 = 1 << 10
	FlagScale             uint16 = 1 << 11
	FlagColour            uint16 = 1 << 12
)

// Text2D/Text3D-only flags; again bit 256, scoped by shape kind.
const (
	FlagWorldSpace   uint16 = 1 << 8 // Text2D
	FlagScreenFacing uint16 = 1 << 8 // Text3D
)

// DataTypeId tags a MeshShape Data message's payload (spec.md §4.5).
const (
	DataVertices uint16 = iota
	DataIndices
	DataNormals
	DataColours
)

// DrawType selects how a MeshShape/mesh resource's indices are interpreted.
const (
	DrawPoints uint8 = iota
	DrawLines
	DrawTriangles
	DrawVoxels
	DrawQuads // reserved
)

var (
	ErrReservedNonZero = errors.New("shapes: reserved field must be zero")
	ErrTransientUpdate = errors.New("shapes: update of object_id 0 (transient) is rejected")
)

// Attributes carries colour/position/rotation/scale internally as f64,
// truncating to f32 on the wire unless FlagDoublePrecision is set (spec.md
// §9's double/single-precision duality note: f64 is the source of truth).
type Attributes struct {
	Colour   uint32 // r,g,b,a byte order
	Position [3]float64
	Rotation [4]float64 // quaternion x,y,z,w
	Scale    [3]float64
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

// Write emits the full attributes block (colour, position, rotation, scale).
func (a Attributes) Write(w *wire.Writer, double bool) bool {
	return w.WriteUint32(a.Colour) &&
		writeVec(w, a.Position[:], double) &&
		writeVec(w, a.Rotation[:], double) &&
		writeVec(w, a.Scale[:], double)
}

// ReadAttributes reads the full attributes block.
func ReadAttributes(r *wire.Reader, double bool) (Attributes, bool) {
	var a Attributes
	colour, ok := r.ReadUint32()
	if !ok {
		return a, false
	}
	a.Colour = colour
	if !readVec(r, a.Position[:], double) || !readVec(r, a.Rotation[:], double) || !readVec(r, a.Scale[:], double) {
		return a, false
	}
	return a, true
}

// WriteLimited emits only the components named by flags, in the fixed
// order Position|Rotation|Scale|Colour (spec.md §4.5's Update rule).
func (a Attributes) WriteLimited(w *wire.Writer, flags uint16, double bool) bool {
	if flags&FlagPosition != 0 && !writeVec(w, a.Position[:], double) {
		return false
	}
	if flags&FlagRotation != 0 && !writeVec(w, a.Rotation[:], double) {
		return false
	}
	if flags&FlagScale != 0 && !writeVec(w, a.Scale[:], double) {
		return false
	}
	if flags&FlagColour != 0 && !w.WriteUint32(a.Colour) {
		return false
	}
	return true
}

// ReadLimited reads only the components named by flags, in the same fixed
// order, leaving the rest of a at its zero value.
func ReadLimited(r *wire.Reader, flags uint16, double bool) (Attributes, bool) {
	var a Attributes
	if flags&FlagPosition != 0 && !readVec(r, a.Position[:], double) {
		return a, false
	}
	if flags&FlagRotation != 0 && !readVec(r, a.Rotation[:], double) {
		return a, false
	}
	if flags&FlagScale != 0 && !readVec(r, a.Scale[:], double) {
		return a, false
	}
	if flags&FlagColour != 0 {
		c, ok := r.ReadUint32()
		if !ok {
			return a, false
		}
		a.Colour = c
	}
	return a, true
}

// CreateHeader is the common Create-message prefix shared by every shape kind.
type CreateHeader struct {
	ObjectID uint32
	Category uint16
	Flags    uint16
}

// WriteCreateHeader emits object_id, category, flags, reserved(=0).
func WriteCreateHeader(w *wire.Writer, h CreateHeader) bool {
	return w.WriteUint32(h.ObjectID) && w.WriteUint16(h.Category) && w.WriteUint16(h.Flags) && w.WriteUint16(0)
}

// ReadCreateHeader reads the common prefix, rejecting a nonzero reserved field.
func ReadCreateHeader(r *wire.Reader) (CreateHeader, error) {
	var h CreateHeader
	objectID, ok := r.ReadUint32()
	if !ok {
		return h, wire.ErrTruncated
	}
	category, ok := r.ReadUint16()
	if !ok {
		return h, wire.ErrTruncated
	}
	flags, ok := r.ReadUint16()
	if !ok {
		return h, wire.ErrTruncated
	}
	reserved, ok := r.ReadUint16()
	if !ok {
		return h, wire.ErrTruncated
	}
	if reserved != 0 {
		return h, ErrReservedNonZero
	}
	h.ObjectID, h.Category, h.Flags = objectID, category, flags
	return h, nil
}

// WriteDestroy emits a Destroy message body (object_id only).
func WriteDestroy(w *wire.Writer, objectID uint32) bool { return w.WriteUint32(objectID) }

// ReadDestroy reads a Destroy message body.
func ReadDestroy(r *wire.Reader) (uint32, bool) { return r.ReadUint32() }

// Update is an object_id/flags/attributes Update message body.
type Update struct {
	ObjectID uint32
	Flags    uint16
	Attrs    Attributes
}

// Write emits an Update message, rejecting a transient (id 0) object.
func (u Update) Write(w *wire.Writer) (bool, error) {
	if u.ObjectID == 0 {
		return false, ErrTransientUpdate
	}
	if !w.WriteUint32(u.ObjectID) || !w.WriteUint16(u.Flags) {
		return false, wire.ErrTruncated
	}
	double := u.Flags&FlagDoublePrecision != 0
	var ok bool
	if u.Flags&FlagLimitedAttributes != 0 {
		ok = u.Attrs.WriteLimited(w, u.Flags, double)
	} else {
		ok = u.Attrs.Write(w, double)
	}
	return ok, nil
}

// ReadUpdate reads an Update message body.
func ReadUpdate(r *wire.Reader) (Update, error) {
	var u Update
	objectID, ok := r.ReadUint32()
	if !ok {
		return u, wire.ErrTruncated
	}
	if objectID == 0 {
		return u, ErrTransientUpdate
	}
	flags, ok := r.ReadUint16()
	if !ok {
		return u, wire.ErrTruncated
	}
	double := flags&FlagDoublePrecision != 0
	var attrs Attributes
	var attrsOK bool
	if flags&FlagLimitedAttributes != 0 {
		attrs, attrsOK = ReadLimited(r, flags, double)
	} else {
		attrs, attrsOK = ReadAttributes(r, double)
	}
	if !attrsOK {
		return u, wire.ErrTruncated
	}
	u.ObjectID, u.Flags, u.Attrs = objectID, flags, attrs
	return u, nil
}
