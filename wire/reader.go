package wire

import "encoding/binary"

// Reader parses one packet's payload: header and CRC are validated up
// front by NewReader/ParsePacket, leaving scalar/array accessors to walk
// the payload with bounds checking.
type Reader struct {
	hdr   Header
	body  []byte // payload bytes only, CRC excluded
	pos   int
	valid bool
}

// ParsePacket validates marker, version, bounds and (if present) CRC over
// b, which must contain exactly one packet: header + payload + optional
// CRC, and nothing else. Use ScanForMarker first when reading from a
// stream that may have leading garbage or multiple packets concatenated.
func ParsePacket(b []byte) (*Reader, error) {
	if len(b) < HeaderSize {
		return nil, ErrTruncated
	}
	hdr := decodeHeader(b[:HeaderSize])
	if hdr.Marker != Marker {
		return nil, ErrBadMarker
	}
	if hdr.VersionMajor != VersionMajor {
		return nil, ErrBadVersion
	}
	want := HeaderSize + int(hdr.PayloadSize)
	if hdr.HasCRC() {
		want += CrcSize
	}
	if len(b) < want {
		return nil, ErrTruncated
	}
	body := b[HeaderSize : HeaderSize+int(hdr.PayloadSize)]
	if hdr.HasCRC() {
		wantCRC := binary.BigEndian.Uint16(b[HeaderSize+int(hdr.PayloadSize):want])
		gotCRC := CRC16(CRCSeed, b[:HeaderSize+int(hdr.PayloadSize)])
		if wantCRC != gotCRC {
			return nil, ErrBadCRC
		}
	}
	return &Reader{hdr: hdr, body: body, valid: true}, nil
}

// PacketLen returns how many bytes of b ParsePacket would have consumed,
// without allocating a Reader; used by scanners that only need framing.
func PacketLen(b []byte) (int, error) {
	if len(b) < HeaderSize {
		return 0, ErrTruncated
	}
	hdr := decodeHeader(b[:HeaderSize])
	if hdr.Marker != Marker {
		return 0, ErrBadMarker
	}
	n := HeaderSize + int(hdr.PayloadSize)
	if hdr.HasCRC() {
		n += CrcSize
	}
	if len(b) < n {
		return 0, ErrTruncated
	}
	return n, nil
}

func (r *Reader) Header() Header { return r.hdr }
func (r *Reader) Invalid() bool  { return !r.valid }

// Remaining returns the number of unread payload bytes.
func (r *Reader) Remaining() int { return len(r.body) - r.pos }

func (r *Reader) fail() bool { r.valid = false; return false }

func (r *Reader) ensure(n int) bool {
	if !r.valid || r.Remaining() < n {
		return r.fail()
	}
	return true
}

// Peek returns the next n unread bytes without advancing the cursor.
func (r *Reader) Peek(n int) ([]byte, bool) {
	if !r.ensure(n) {
		return nil, false
	}
	return r.body[r.pos : r.pos+n], true
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, bool) {
	b, ok := r.Peek(n)
	if !ok {
		return nil, false
	}
	r.pos += n
	return b, true
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) bool {
	if !r.ensure(n) {
		return false
	}
	r.pos += n
	return true
}

func (r *Reader) ReadUint8() (uint8, bool) {
	b, ok := r.ReadBytes(1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (r *Reader) ReadInt8() (int8, bool) {
	v, ok := r.ReadUint8()
	return int8(v), ok
}

func (r *Reader) ReadUint16() (uint16, bool) {
	b, ok := r.ReadBytes(2)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint16(b), true
}

func (r *Reader) ReadInt16() (int16, bool) {
	v, ok := r.ReadUint16()
	return int16(v), ok
}

func (r *Reader) ReadUint32() (uint32, bool) {
	b, ok := r.ReadBytes(4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

func (r *Reader) ReadInt32() (int32, bool) {
	v, ok := r.ReadUint32()
	return int32(v), ok
}

func (r *Reader) ReadUint64() (uint64, bool) {
	b, ok := r.ReadBytes(8)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

func (r *Reader) ReadInt64() (int64, bool) {
	v, ok := r.ReadUint64()
	return int64(v), ok
}

func (r *Reader) ReadFloat32() (float32, bool) {
	v, ok := r.ReadUint32()
	if !ok {
		return 0, false
	}
	return float32frombits(v), true
}

func (r *Reader) ReadFloat64() (float64, bool) {
	v, ok := r.ReadUint64()
	if !ok {
		return 0, false
	}
	return float64frombits(v), true
}

// ReadString reads a u16-length-prefixed UTF-8 string with no terminator.
func (r *Reader) ReadString() (string, bool) {
	n, ok := r.ReadUint16()
	if !ok {
		return "", false
	}
	b, ok := r.ReadBytes(int(n))
	if !ok {
		return "", false
	}
	return string(b), true
}
