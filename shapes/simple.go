package shapes

import "github.com/scenewire/scenewire/wire"

// Simple shapes (Sphere, Box, Cone, Cylinder, Capsule, Plane, Star, Arrow,
// Pose) carry no Create tail beyond the common header and attributes;
// rotation/scale semantics for directional shapes are interpreted by the
// consumer, not encoded specially on the wire (spec.md §4.5).

// WriteSimpleCreate emits a Create message for any simple shape kind.
func WriteSimpleCreate(w *wire.Writer, kind Kind, msg uint16, h CreateHeader, attrs Attributes) bool {
	w.Reset(kind, msg)
	if !WriteCreateHeader(w, h) {
		return false
	}
	return attrs.Write(w, h.Flags&FlagDoublePrecision != 0)
}

// ReadSimpleCreate reads a Create message body for any simple shape kind.
func ReadSimpleCreate(r *wire.Reader) (CreateHeader, Attributes, error) {
	h, err := ReadCreateHeader(r)
	if err != nil {
		return h, Attributes{}, err
	}
	attrs, ok := ReadAttributes(r, h.Flags&FlagDoublePrecision != 0)
	if !ok {
		return h, attrs, wire.ErrTruncated
	}
	return h, attrs, nil
}
