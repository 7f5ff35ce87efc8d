package wire

import "encoding/binary"

// Writer assembles one packet: header, payload, and (unless suppressed) a
// trailing CRC. A Writer is reused across packets via Reset to avoid
// per-packet allocation on the hot send path.
type Writer struct {
	hdr           Header
	buf           []byte // buf[:HeaderSize] is header space, the rest is payload
	valid         bool
	allowOversize bool
}

// NewWriter returns a Writer with a small initial capacity; it grows as needed.
func NewWriter() *Writer {
	w := &Writer{buf: make([]byte, HeaderSize, 512)}
	w.valid = true
	return w
}

// AllowOversize lifts the 65535-byte payload ceiling for this Writer. Only
// the file-stream collated-packet path (spec.md §4.4's file-only exception)
// may set this; Finalise forces FlagNoCrc whenever it is exercised.
func (w *Writer) AllowOversize(v bool) { w.allowOversize = v }

// Reset starts a new packet for the given routing/message id, discarding
// any previous payload bytes but keeping the underlying buffer capacity.
func (w *Writer) Reset(routing, message uint16) {
	w.buf = w.buf[:HeaderSize]
	w.hdr = Header{
		Marker:       Marker,
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		RoutingID:    routing,
		MessageID:    message,
	}
	w.valid = true
}

// Invalid reports whether a write has already failed (payload bound
// exceeded); further writes are no-ops until the next Reset.
func (w *Writer) Invalid() bool { return !w.valid }

// SetFlags ORs additional header flag bits (e.g. FlagNoCrc) into the packet.
func (w *Writer) SetFlags(f uint8) { w.hdr.Flags |= f }

// Len returns the number of payload bytes written so far (header excluded).
func (w *Writer) Len() int { return len(w.buf) - HeaderSize }

// Remaining returns how many more payload bytes this Writer will accept
// before failing, or a very large number once AllowOversize is set.
func (w *Writer) Remaining() int {
	if w.allowOversize {
		return 1<<31 - 1
	}
	return MaxPayloadSize - w.Len()
}

func (w *Writer) fail() bool { w.valid = false; return false }

func (w *Writer) ensure(n int) bool {
	if !w.valid {
		return false
	}
	if !w.allowOversize && w.Len()+n > MaxPayloadSize {
		return w.fail()
	}
	return true
}

// WriteBytes appends raw bytes with no length prefix.
func (w *Writer) WriteBytes(b []byte) bool {
	if !w.ensure(len(b)) {
		return false
	}
	w.buf = append(w.buf, b...)
	return true
}

func (w *Writer) WriteUint8(v uint8) bool {
	if !w.ensure(1) {
		return false
	}
	w.buf = append(w.buf, v)
	return true
}

func (w *Writer) WriteInt8(v int8) bool { return w.WriteUint8(uint8(v)) }

func (w *Writer) WriteUint16(v uint16) bool {
	if !w.ensure(2) {
		return false
	}
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return true
}

func (w *Writer) WriteInt16(v int16) bool { return w.WriteUint16(uint16(v)) }

func (w *Writer) WriteUint32(v uint32) bool {
	if !w.ensure(4) {
		return false
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return true
}

func (w *Writer) WriteInt32(v int32) bool { return w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint64(v uint64) bool {
	if !w.ensure(8) {
		return false
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return true
}

func (w *Writer) WriteInt64(v int64) bool { return w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) bool {
	return w.WriteUint32(float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) bool {
	return w.WriteUint64(float64bits(v))
}

// WriteString writes a u16 length prefix followed by the raw UTF-8 bytes,
// no terminator (spec.md §6.1).
func (w *Writer) WriteString(s string) bool {
	if len(s) > MaxPayloadSize {
		return w.fail()
	}
	if !w.WriteUint16(uint16(len(s))) {
		return false
	}
	return w.WriteBytes([]byte(s))
}

// Finalise fills in the payload size and appends the CRC unless FlagNoCrc
// is set. It returns ErrTruncated if an earlier write already failed, and
// ErrOversizedPacket if the payload exceeds 65535 bytes on a Writer that
// does not allow the file-stream oversize exception.
func (w *Writer) Finalise() error {
	if !w.valid {
		return ErrTruncated
	}
	payloadLen := w.Len()
	if payloadLen > MaxPayloadSize {
		if !w.allowOversize {
			return ErrOversizedPacket
		}
		// The payload_size field cannot represent the true length; per
		// spec.md §4.4 this path is only valid for file streams and must
		// be read back by scanning for the next marker, never trusted via
		// payload_size. NoCrc is mandatory because the CRC's position
		// can't be derived from a wrapped 16-bit size.
		w.hdr.Flags |= FlagNoCrc
	}
	w.hdr.PayloadSize = uint16(payloadLen)
	w.hdr.encode(w.buf[0:HeaderSize])
	if w.hdr.HasCRC() {
		crc := CRC16(CRCSeed, w.buf)
		var b [CrcSize]byte
		binary.BigEndian.PutUint16(b[:], crc)
		w.buf = append(w.buf, b[:]...)
	}
	return nil
}

// PacketBytes returns the finalised packet (header + payload + optional CRC).
func (w *Writer) PacketBytes() []byte { return w.buf }

// Header returns the header as it will be (or was) written.
func (w *Writer) Header() Header { return w.hdr }
