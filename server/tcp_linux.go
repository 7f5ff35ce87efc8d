package server

import (
	"net"

	"golang.org/x/sys/unix"

	"github.com/scenewire/scenewire/internal/nlog"
)

// tuneTCPConn sets TCP_NODELAY and SO_SNDBUF directly through the raw file
// descriptor, mirroring the ios package's syscall-level socket/FS tuning
// split between a Linux-specific file and a portable fallback.
func tuneTCPConn(conn net.Conn, sendBufferSize int) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		nlog.Warningf("server: tcp tune: %v", err)
		return
	}
	ctrlErr := raw.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			nlog.Warningf("server: set TCP_NODELAY: %v", err)
		}
		if sendBufferSize > 0 {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, sendBufferSize); err != nil {
				nlog.Warningf("server: set SO_SNDBUF: %v", err)
			}
		}
	})
	if ctrlErr != nil {
		nlog.Warningf("server: tcp tune control: %v", ctrlErr)
	}
}
