package shapes_test

import (
	"testing"

	"github.com/scenewire/scenewire/shapes"
	"github.com/scenewire/scenewire/wire"
)

func TestSimpleCreateRoundTrip(t *testing.T) {
	h := shapes.CreateHeader{ObjectID: 42, Category: 1, Flags: 0}
	attrs := shapes.Attributes{
		Colour:   0xFF00FFFF,
		Position: [3]float64{1.2, 2.3, 3.4},
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1.26, 1.26, 1.26},
	}
	w := wire.NewWriter()
	if !shapes.WriteSimpleCreate(w, shapes.Sphere, shapes.MsgCreate, h, attrs) {
		t.Fatalf("write failed")
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}

	r, err := wire.ParsePacket(w.PacketBytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Header().RoutingID != shapes.Sphere {
		t.Fatalf("routing = %d, want Sphere", r.Header().RoutingID)
	}
	gotH, gotAttrs, err := shapes.ReadSimpleCreate(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if gotH != h {
		t.Fatalf("header mismatch: got %+v want %+v", gotH, h)
	}
	// Without FlagDoublePrecision the position travels as f32.
	wantPos := [3]float64{float64(float32(1.2)), float64(float32(2.3)), float64(float32(3.4))}
	if gotAttrs.Position != wantPos || gotAttrs.Colour != attrs.Colour {
		t.Fatalf("attrs mismatch: got %+v want position %v colour %#x", gotAttrs, wantPos, attrs.Colour)
	}
}

func TestDoublePrecisionRoundTripExact(t *testing.T) {
	h := shapes.CreateHeader{ObjectID: 7, Flags: shapes.FlagDoublePrecision}
	attrs := shapes.Attributes{
		Position: [3]float64{1.0 / 3, -9999.123456789, 42},
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1, 1, 1},
	}
	w := wire.NewWriter()
	shapes.WriteSimpleCreate(w, shapes.Box, shapes.MsgCreate, h, attrs)
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	r, _ := wire.ParsePacket(w.PacketBytes())
	_, got, err := shapes.ReadSimpleCreate(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Position != attrs.Position {
		t.Fatalf("f64 round-trip lost precision: got %v want %v", got.Position, attrs.Position)
	}
}

func TestReservedNonZeroRejected(t *testing.T) {
	w := wire.NewWriter()
	w.Reset(shapes.Sphere, shapes.MsgCreate)
	w.WriteUint32(1)
	w.WriteUint16(0)
	w.WriteUint16(0)
	w.WriteUint16(7) // reserved, must be zero
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	r, _ := wire.ParsePacket(w.PacketBytes())
	if _, _, err := shapes.ReadSimpleCreate(r); err != shapes.ErrReservedNonZero {
		t.Fatalf("err = %v, want ErrReservedNonZero", err)
	}
}

func TestUpdateRejectsTransientObject(t *testing.T) {
	u := shapes.Update{ObjectID: 0, Flags: 0}
	w := wire.NewWriter()
	w.Reset(shapes.Sphere, shapes.MsgUpdate)
	if _, err := u.Write(w); err != shapes.ErrTransientUpdate {
		t.Fatalf("err = %v, want ErrTransientUpdate", err)
	}
}

func TestUpdateLimitedAttributesOrder(t *testing.T) {
	u := shapes.Update{
		ObjectID: 5,
		Flags:    shapes.FlagLimitedAttributes | shapes.FlagScale | shapes.FlagColour,
		Attrs: shapes.Attributes{
			Colour: 0x11223344,
			Scale:  [3]float64{2, 2, 2},
		},
	}
	w := wire.NewWriter()
	w.Reset(shapes.Sphere, shapes.MsgUpdate)
	ok, err := u.Write(w)
	if !ok || err != nil {
		t.Fatalf("write: ok=%v err=%v", ok, err)
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	r, _ := wire.ParsePacket(w.PacketBytes())
	got, err := shapes.ReadUpdate(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Attrs.Scale != u.Attrs.Scale || got.Attrs.Colour != u.Attrs.Colour {
		t.Fatalf("limited attrs mismatch: got %+v", got.Attrs)
	}
	if got.Attrs.Position != [3]float64{} {
		t.Fatalf("position should be absent/zero, got %v", got.Attrs.Position)
	}
}

func TestMeshSetRoundTrip(t *testing.T) {
	c := shapes.MeshSetCreate{
		Header: shapes.CreateHeader{ObjectID: 1},
		Parts: []shapes.MeshSetPart{
			{ResourceID: 100, Attrs: shapes.Attributes{Scale: [3]float64{1, 1, 1}}},
			{ResourceID: 100, Attrs: shapes.Attributes{Scale: [3]float64{2, 2, 2}}},
		},
	}
	w := wire.NewWriter()
	if !c.Write(w) {
		t.Fatalf("write failed")
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	r, _ := wire.ParsePacket(w.PacketBytes())
	got, err := shapes.ReadMeshSetCreate(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Parts) != 2 || got.Parts[1].Attrs.Scale[0] != 2 {
		t.Fatalf("parts mismatch: %+v", got.Parts)
	}
}

func TestCategoryNameRoundTrip(t *testing.T) {
	c := shapes.CategoryName{CategoryID: 3, ParentID: 1, Name: "vehicles", DefaultActive: true}
	w := wire.NewWriter()
	if !c.Write(w) {
		t.Fatalf("write failed")
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	r, err := wire.ParsePacket(w.PacketBytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Header().RoutingID != wire.RoutingCategory {
		t.Fatalf("routing = %d, want Category", r.Header().RoutingID)
	}
	got, err := shapes.ReadCategoryName(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != c {
		t.Fatalf("mismatch: got %+v want %+v", got, c)
	}
}
