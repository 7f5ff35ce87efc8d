//go:build !linux

package server

import "net"

// tuneTCPConn uses net.TCPConn's portable setters where the Linux build
// reaches for golang.org/x/sys/unix directly (SPEC_FULL.md §6.5).
func tuneTCPConn(conn net.Conn, sendBufferSize int) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.SetNoDelay(true)
	if sendBufferSize > 0 {
		_ = tc.SetWriteBuffer(sendBufferSize)
	}
}
