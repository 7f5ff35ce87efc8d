package wire

import "errors"

// Sentinel errors for the framing layer (spec.md §7). Framing and I/O
// errors are local to the packet that produced them: callers drop the
// packet and keep the connection open.
var (
	ErrTruncated      = errors.New("wire: truncated read or write")
	ErrBadMarker      = errors.New("wire: bad packet marker")
	ErrBadVersion     = errors.New("wire: unsupported protocol version")
	ErrBadCRC         = errors.New("wire: crc mismatch")
	ErrOversizedPacket = errors.New("wire: payload exceeds 65535 bytes")
)
