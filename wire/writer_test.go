package wire

import "testing"

func TestFinaliseSetsPayloadSizeAndValidCRC(t *testing.T) {
	w := NewWriter()
	w.Reset(RoutingServerInfo, 0)
	if !w.WriteUint32(42) || !w.WriteUint16(7) {
		t.Fatal("unexpected write failure")
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("Finalise: %v", err)
	}
	pkt := w.PacketBytes()
	r, err := ParsePacket(pkt)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if r.Header().PayloadSize != 6 {
		t.Fatalf("payload size = %d, want 6", r.Header().PayloadSize)
	}
	v, _ := r.ReadUint32()
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestNoCrcOmitsTrailer(t *testing.T) {
	w := NewWriter()
	w.Reset(RoutingControl, CtrlNull)
	w.SetFlags(FlagNoCrc)
	c := Control{Flags: 1, Value32: 2, Value64: 3}
	if !c.Write(w) {
		t.Fatal("write failed")
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("Finalise: %v", err)
	}
	pkt := w.PacketBytes()
	if len(pkt) != HeaderSize+16 {
		t.Fatalf("len = %d, want %d (no CRC trailer)", len(pkt), HeaderSize+16)
	}
	r, err := ParsePacket(pkt)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	got, ok := ReadControl(r)
	if !ok || got != c {
		t.Fatalf("ReadControl = %+v, %v, want %+v, true", got, ok, c)
	}
}

func TestBadCRCRejected(t *testing.T) {
	w := NewWriter()
	w.Reset(RoutingControl, CtrlFrame)
	Control{Value32: 33}.Write(w)
	if err := w.Finalise(); err != nil {
		t.Fatal(err)
	}
	pkt := w.PacketBytes()
	pkt[len(pkt)-1] ^= 0xFF // flip a CRC byte
	if _, err := ParsePacket(pkt); err != ErrBadCRC {
		t.Fatalf("got %v, want ErrBadCRC", err)
	}
}

func TestWritePastPayloadLimitFails(t *testing.T) {
	w := NewWriter()
	w.Reset(RoutingMesh, 0)
	big := make([]byte, MaxPayloadSize)
	if !w.WriteBytes(big) {
		t.Fatal("first max-size write should succeed")
	}
	if w.WriteUint8(1) {
		t.Fatal("write past the 65535-byte payload bound should fail")
	}
	if err := w.Finalise(); err != ErrTruncated {
		t.Fatalf("Finalise after a failed write = %v, want ErrTruncated", err)
	}
}

func TestAllowOversizeForcesNoCrc(t *testing.T) {
	w := NewWriter()
	w.AllowOversize(true)
	w.Reset(RoutingCollatedPacket, 0)
	big := make([]byte, MaxPayloadSize+128)
	if !w.WriteBytes(big) {
		t.Fatal("oversize write should succeed when allowed")
	}
	if err := w.Finalise(); err != nil {
		t.Fatalf("Finalise: %v", err)
	}
	if w.Header().HasCRC() {
		t.Fatal("oversize packet must not claim a CRC (position is not derivable)")
	}
}

func TestScanForMarkerFindsEmbeddedPacket(t *testing.T) {
	w := NewWriter()
	w.Reset(RoutingControl, CtrlEnd)
	w.Finalise()
	pkt := w.PacketBytes()
	noise := append([]byte{0xde, 0xad, 0xbe, 0xef, 0x00}, pkt...)
	off := ScanForMarker(noise)
	if off != 5 {
		t.Fatalf("ScanForMarker = %d, want 5", off)
	}
	n, err := PacketLen(noise[off:])
	if err != nil || n != len(pkt) {
		t.Fatalf("PacketLen = %d, %v, want %d, nil", n, err, len(pkt))
	}
}

func TestCRC16KnownVector(t *testing.T) {
	// "123456789" is the standard CRC-16/CCITT-FALSE conformance vector; expected 0x29B1.
	got := CRC16(CRCSeed, []byte("123456789"))
	if got != 0x29B1 {
		t.Fatalf("CRC16(\"123456789\") = %#04x, want 0x29b1", got)
	}
}
