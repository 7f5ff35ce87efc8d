package server

import (
	"net"

	"github.com/scenewire/scenewire/wire"
)

// TCPSink wraps a connected net.Conn as a Sink, applying the socket tuning
// of SPEC_FULL.md §6.5 (TCP_NODELAY, a larger send buffer) at construction.
type TCPSink struct {
	conn net.Conn
}

// NewTCPSink wraps conn and best-effort applies socket tuning. Tuning
// failures are not fatal: a slower socket is still a usable one.
func NewTCPSink(conn net.Conn, sendBufferSize int) *TCPSink {
	tuneTCPConn(conn, sendBufferSize)
	return &TCPSink{conn: conn}
}

// Write rejects any outer packet whose payload exceeds the 65535-byte
// ceiling before it reaches the socket (SPEC_FULL.md §9.2): the file-only
// oversize exception never applies here, so this is a belt-and-braces
// check behind the one wire.Writer.Finalise already performs.
func (s *TCPSink) Write(b []byte) (int, error) {
	if n, err := wire.PacketLen(b); err != nil || n != len(b) {
		return 0, wire.ErrOversizedPacket
	}
	return s.conn.Write(b)
}

func (s *TCPSink) Close() error { return s.conn.Close() }

// RemoteAddr exposes the peer address for logging/diagnostics.
func (s *TCPSink) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }
