// Package wire implements the scenewire binary packet format: the 16-byte
// header, CRC-16/CCITT trailer, and the bounded reader/writer pair every
// higher-level message encoder builds on.
//
// All multi-byte fields are big-endian ("network order"), per protocol
// version 0.3.
package wire

import "encoding/binary"

// Marker is the constant 4-byte sentinel every packet header begins with.
const Marker uint32 = 0x03e55e30

// Protocol version. Embedders negotiate nothing: the version rides along
// on every header so a mismatched reader can reject cleanly.
const (
	VersionMajor uint16 = 0
	VersionMinor uint16 = 3
)

// HeaderSize is the fixed, uncompressed size of PacketHeader on the wire.
const HeaderSize = 16

// CrcSize is the size of the trailing CRC, present unless FlagNoCrc is set.
const CrcSize = 2

// MaxPayloadSize is the largest payload a single (non-collated-file) packet may carry.
const MaxPayloadSize = 65535

// Header flag bits.
const (
	FlagNoCrc uint8 = 1 << 0
)

// Reserved routing ids. Shapes occupy RoutingShapeBase..RoutingShapeMax;
// user extensions begin at RoutingUserBase.
const (
	RoutingServerInfo      uint16 = 1
	RoutingControl         uint16 = 2
	RoutingCollatedPacket  uint16 = 3
	RoutingMesh            uint16 = 4
	RoutingCamera          uint16 = 5
	RoutingCategory        uint16 = 6
	RoutingMaterial        uint16 = 7
	RoutingShapeBase       uint16 = 64
	RoutingShapeMax        uint16 = 2047
	RoutingUserBase        uint16 = 2048
)

// Header is the 16-byte packet header, in its decoded (host-order) form.
type Header struct {
	Marker        uint32
	VersionMajor  uint16
	VersionMinor  uint16
	RoutingID     uint16
	MessageID     uint16
	PayloadSize   uint16 // bytes after the header, excluding any CRC
	PayloadOffset uint8  // reserved, always zero
	Flags         uint8
}

// HasCRC reports whether a packet with these flags carries a trailing CRC.
func (h Header) HasCRC() bool { return h.Flags&FlagNoCrc == 0 }

func (h Header) encode(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], h.Marker)
	binary.BigEndian.PutUint16(b[4:6], h.VersionMajor)
	binary.BigEndian.PutUint16(b[6:8], h.VersionMinor)
	binary.BigEndian.PutUint16(b[8:10], h.RoutingID)
	binary.BigEndian.PutUint16(b[10:12], h.MessageID)
	binary.BigEndian.PutUint16(b[12:14], h.PayloadSize)
	b[14] = h.PayloadOffset
	b[15] = h.Flags
}

func decodeHeader(b []byte) Header {
	return Header{
		Marker:        binary.BigEndian.Uint32(b[0:4]),
		VersionMajor:  binary.BigEndian.Uint16(b[4:6]),
		VersionMinor:  binary.BigEndian.Uint16(b[6:8]),
		RoutingID:     binary.BigEndian.Uint16(b[8:10]),
		MessageID:     binary.BigEndian.Uint16(b[10:12]),
		PayloadSize:   binary.BigEndian.Uint16(b[12:14]),
		PayloadOffset: b[14],
		Flags:         b[15],
	}
}
