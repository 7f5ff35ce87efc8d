package collate_test

import (
	"bytes"
	"testing"

	"github.com/scenewire/scenewire/collate"
	"github.com/scenewire/scenewire/wire"
)

func innerPacket(t *testing.T, routing, msg uint16, payload string) []byte {
	t.Helper()
	w := wire.NewWriter()
	w.Reset(routing, msg)
	if !w.WriteString(payload) {
		t.Fatalf("write payload")
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	return append([]byte(nil), w.PacketBytes()...)
}

func TestAddAndFinaliseUncompressed(t *testing.T) {
	a := innerPacket(t, wire.RoutingShapeBase, 1, "a")
	b := innerPacket(t, wire.RoutingShapeBase, 2, "b")

	c := collate.New(false, collate.None, 65504)
	if _, err := c.Add(a); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := c.Add(b); err != nil {
		t.Fatalf("add b: %v", err)
	}

	w := wire.NewWriter()
	if err := c.Finalise(w, false); err != nil {
		t.Fatalf("finalise: %v", err)
	}

	r, err := wire.ParsePacket(w.PacketBytes())
	if err != nil {
		t.Fatalf("parse outer: %v", err)
	}
	if r.Header().RoutingID != wire.RoutingCollatedPacket {
		t.Fatalf("routing id = %d, want %d", r.Header().RoutingID, wire.RoutingCollatedPacket)
	}

	inner, err := collate.Inflate(r)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	want := append(append([]byte(nil), a...), b...)
	if !bytes.Equal(inner, want) {
		t.Fatalf("inner mismatch: got %d bytes, want %d", len(inner), len(want))
	}
}

func TestAddAndFinaliseCompressed(t *testing.T) {
	payload := bytes.Repeat([]byte("scenewire"), 64)
	a := innerPacket(t, wire.RoutingShapeBase, 1, string(payload))

	c := collate.New(true, collate.High, 65504)
	if _, err := c.Add(a); err != nil {
		t.Fatalf("add: %v", err)
	}

	w := wire.NewWriter()
	if err := c.Finalise(w, false); err != nil {
		t.Fatalf("finalise: %v", err)
	}

	r, err := wire.ParsePacket(w.PacketBytes())
	if err != nil {
		t.Fatalf("parse outer: %v", err)
	}
	inner, err := collate.Inflate(r)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Equal(inner, a) {
		t.Fatalf("round-trip mismatch after compression")
	}
}

func TestAddRejectsOverBudget(t *testing.T) {
	a := innerPacket(t, wire.RoutingShapeBase, 1, "x")
	c := collate.New(false, collate.None, len(a)-1)
	if _, err := c.Add(a); err != collate.ErrDoesNotFit {
		t.Fatalf("err = %v, want ErrDoesNotFit", err)
	}
}

func TestFinaliseEmptyFails(t *testing.T) {
	c := collate.New(false, collate.None, 65504)
	w := wire.NewWriter()
	if err := c.Finalise(w, false); err != collate.ErrEmpty {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestFileStreamAllowsOversizeAndForcesNoCrc(t *testing.T) {
	big := bytes.Repeat([]byte("z"), 70000)
	iw := wire.NewWriter()
	iw.AllowOversize(true)
	iw.Reset(wire.RoutingShapeBase, 1)
	if !iw.WriteBytes(big) {
		t.Fatalf("write big payload")
	}
	if err := iw.Finalise(); err != nil {
		t.Fatalf("finalise inner: %v", err)
	}
	a := append([]byte(nil), iw.PacketBytes()...)

	c := collate.New(false, collate.None, 0) // unbounded: file-stream path
	if _, err := c.Add(a); err != nil {
		t.Fatalf("add: %v", err)
	}

	w := wire.NewWriter()
	if err := c.Finalise(w, true); err != nil {
		t.Fatalf("finalise: %v", err)
	}
	if w.Header().HasCRC() {
		t.Fatalf("oversize collated packet must set FlagNoCrc")
	}
}
