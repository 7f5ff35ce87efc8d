package server

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/scenewire/scenewire/internal/cos"
	"github.com/scenewire/scenewire/internal/nlog"
	"github.com/scenewire/scenewire/wire"
)

// Monitor is the connection monitor of spec.md §4.10: it accepts TCP
// connections into a pending list (MonitorConnections) and publishes them
// to the owning Server (CommitConnections), either driven by the host
// thread (synchronous mode) or by its own 50ms-tick goroutine
// (StartAsync, asynchronous mode).
type Monitor struct {
	server   *Server
	listener *net.TCPListener

	pendingMu sync.Mutex
	pending   []connHandle

	mu        sync.Mutex
	commitSig chan struct{}

	stopCh   *cos.StopCh
	eg       *errgroup.Group
	readPool *cos.BytePool
}

// compile-time assertion that Monitor satisfies the shared background
// component lifecycle used elsewhere (internal/cos.Runner).
var _ cos.Runner = (*Monitor)(nil)

// NewMonitor binds a TCP listener for s, trying ports
// [ListenPort, ListenPort+PortRange] in order (spec.md §6.3's port_range).
func NewMonitor(s *Server) (*Monitor, error) {
	opts := s.Options()
	var ln *net.TCPListener
	var err error
	for p := int(opts.ListenPort); p <= int(opts.ListenPort)+int(opts.PortRange); p++ {
		ln, err = net.ListenTCP("tcp", &net.TCPAddr{Port: p})
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "server: binding listener in port range [%d, %d]",
			opts.ListenPort, int(opts.ListenPort)+int(opts.PortRange))
	}
	m := &Monitor{
		server:    s,
		listener:  ln,
		commitSig: make(chan struct{}),
		stopCh:    cos.NewStopCh(),
		eg:        &errgroup.Group{},
		readPool:  cos.NewBytePool(64),
	}
	s.monitor = m
	return m, nil
}

// Addr returns the bound listener address.
func (m *Monitor) Addr() net.Addr { return m.listener.Addr() }

// MonitorConnections accepts every connection currently waiting, without
// blocking: the listener's deadline is set to "now", so Accept returns
// immediately with net.ErrClosed or a timeout error once the backlog is
// drained. Each accepted connection is placed on the pending list and a
// lifecycle goroutine is started to detect when its peer disconnects.
func (m *Monitor) MonitorConnections() error {
	if err := m.listener.SetDeadline(time.Now()); err != nil {
		return err
	}
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return errors.Wrap(err, "server: accept")
		}
		c := newConnection(genConnID(), NewTCPSink(conn, int(m.server.Options().ClientBufferSize)),
			m.server.Options(), false, m.server.stats, m.server.resourceSource)
		m.pendingMu.Lock()
		m.pending = append(m.pending, c)
		m.pendingMu.Unlock()
		m.eg.Go(func() error { m.watch(conn, c); return nil })
	}
}

// watch blocks reading from conn (viewers never send meaningful data in
// this push-only protocol) purely to detect peer close/reset.
func (m *Monitor) watch(conn net.Conn, c *Connection) {
	buf := m.readPool.Get()
	defer m.readPool.Put(buf)
	for {
		if _, err := conn.Read(buf); err != nil {
			c.closed.Store(true)
			return
		}
	}
}

// CommitConnections publishes every pending connection to the server: it
// sends the standalone ServerInfo packet, invokes the connect callback,
// and drops any connection that has since closed. It returns the live
// connection count after committing.
func (m *Monitor) CommitConnections() int {
	m.pendingMu.Lock()
	pending := m.pending
	m.pending = nil
	m.pendingMu.Unlock()

	if len(pending) > 0 {
		pkt, err := buildServerInfoPacket(m.server.Info())
		for _, c := range pending {
			if err == nil {
				if _, sendErr := c.Send(pkt, false); sendErr != nil {
					nlog.Warningf("server: sending ServerInfo to %s: %v", c.ID(), sendErr)
				}
			} else {
				nlog.Warningf("server: building ServerInfo packet: %v", err)
			}
			m.server.addConnection(c)
		}
	}
	m.server.dropClosed()
	m.signalCommit()
	return m.server.ConnectionCount()
}

func (m *Monitor) signalCommit() {
	m.mu.Lock()
	close(m.commitSig)
	m.commitSig = make(chan struct{})
	m.mu.Unlock()
}

// WaitForConnection blocks until at least one connection is live or
// timeoutMs elapses, returning the live connection count either way.
func (m *Monitor) WaitForConnection(timeoutMs int) int {
	for {
		if n := m.server.ConnectionCount(); n > 0 {
			return n
		}
		m.mu.Lock()
		sig := m.commitSig
		m.mu.Unlock()
		select {
		case <-sig:
		case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
			return m.server.ConnectionCount()
		}
	}
}

// Name satisfies internal/cos.Runner.
func (m *Monitor) Name() string { return "connection-monitor" }

// Run drives asynchronous mode: a 50ms tick alternating
// MonitorConnections/CommitConnections until Stop is called.
func (m *Monitor) Run() error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh.Listen():
			return nil
		case <-ticker.C:
			if err := m.MonitorConnections(); err != nil {
				nlog.Warningf("server: monitor accept: %v", err)
				continue
			}
			m.CommitConnections()
		}
	}
}

// StartAsync launches Run on its own goroutine (asynchronous mode of
// spec.md §4.10). Run calls MonitorConnections and then CommitConnections
// on every tick, so the host does not call CommitConnections itself in
// this mode.
func (m *Monitor) StartAsync() {
	go func() {
		if err := m.Run(); err != nil {
			nlog.Errorf("server: monitor run: %v", err)
		}
	}()
}

// Stop satisfies internal/cos.Runner: it halts the accept loop, closes the
// listener, and waits for every per-connection watch goroutine to exit.
func (m *Monitor) Stop(err error) {
	if err != nil {
		nlog.Warningf("server: monitor stop: %v", err)
	}
	m.stopCh.Close()
	m.listener.Close()
	_ = m.eg.Wait()
}

func buildServerInfoPacket(info wire.ServerInfo) ([]byte, error) {
	w := wire.NewWriter()
	w.Reset(wire.RoutingServerInfo, 0)
	if !info.Write(w) {
		return nil, wire.ErrTruncated
	}
	if err := w.Finalise(); err != nil {
		return nil, err
	}
	return w.PacketBytes(), nil
}
