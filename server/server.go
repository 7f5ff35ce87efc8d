package server

import (
	"sync"
	"sync/atomic"

	"github.com/scenewire/scenewire/collate"
	"github.com/scenewire/scenewire/config"
	"github.com/scenewire/scenewire/internal/cos"
	"github.com/scenewire/scenewire/meshres"
	"github.com/scenewire/scenewire/stats"
	"github.com/scenewire/scenewire/wire"
)

// connHandle is the subset of Connection/FileConnection's surface the
// Server fans out over; FileConnection overrides UpdateFrame and Close,
// so Server stores this interface rather than *Connection directly.
type connHandle interface {
	ID() string
	Create(sr ShapeResources, createPacket []byte, dataPackets [][]byte) (int, error)
	Update(packet []byte) (int, error)
	Destroy(destroyPacket []byte, resources []uint32) (int, error)
	ReferenceResource(id uint32) (int, error)
	ReleaseResource(id uint32) (int, error)
	UpdateFrame(dt float64, flush bool, secondsToTimeUnit float64) (int, error)
	UpdateTransfers(byteLimit int) (int, error)
	Send(b []byte, allowCollation bool) (int, error)
	SendCollated(col *collate.Collated) (int, error)
	Reset()
	Close() error
	Closed() bool
	BytesSent() int64
}

// Server owns a set of connections and fans every mutating call out to
// each of them (spec.md §4.10). active()==false turns every fan-out
// method into a no-op returning 0, matching the Inadmissible error kind
// of spec.md §7 (no error, just a zero result).
type Server struct {
	opts config.ServerOptions
	info wire.ServerInfo

	mu    sync.RWMutex
	conns []connHandle

	resMu     sync.RWMutex
	resources map[uint32]*meshres.Resource

	active    atomic.Bool
	onConnect atomic.Pointer[func(connHandle)]

	stats   *stats.Collector
	monitor *Monitor
}

// New constructs a Server with the given options, server-info payload, and
// (optional, may be nil) metrics collector.
func New(opts config.ServerOptions, info wire.ServerInfo, sc *stats.Collector) *Server {
	s := &Server{opts: opts, info: info, resources: make(map[uint32]*meshres.Resource), stats: sc}
	s.active.Store(true)
	return s
}

// Options returns the server's configuration.
func (s *Server) Options() config.ServerOptions { return s.opts }

// Info returns the ServerInfo sent to every newly committed connection.
func (s *Server) Info() wire.ServerInfo { return s.info }

// Active reports whether the server currently accepts fan-out calls.
func (s *Server) Active() bool { return s.active.Load() }

// SetActive flips the server's active flag.
func (s *Server) SetActive(v bool) { s.active.Store(v) }

// OnConnect registers a callback invoked for every newly committed
// connection (spec.md §4.10's "user connection callback so the embedder
// can replay scene state"). Passing nil clears it.
func (s *Server) OnConnect(fn func(connHandle)) {
	if fn == nil {
		s.onConnect.Store(nil)
		return
	}
	s.onConnect.Store(&fn)
}

// DefineResource registers a mesh resource body, addressable by res.ID, so
// any connection's packer can transfer it once referenced.
func (s *Server) DefineResource(res *meshres.Resource) {
	s.resMu.Lock()
	_, existed := s.resources[res.ID]
	s.resources[res.ID] = res
	s.resMu.Unlock()
	if !existed && s.stats != nil {
		s.stats.ResourcesActive.Inc()
	}
}

// UndefineResource drops a resource body. Connections that still hold a
// reference to it will fail to resolve it on their next transfer attempt;
// callers should Destroy the resource (releasing every reference) first.
func (s *Server) UndefineResource(id uint32) {
	s.resMu.Lock()
	_, existed := s.resources[id]
	delete(s.resources, id)
	s.resMu.Unlock()
	if existed && s.stats != nil {
		s.stats.ResourcesActive.Dec()
	}
}

func (s *Server) resourceSource(id uint32) *meshres.Resource {
	s.resMu.RLock()
	defer s.resMu.RUnlock()
	return s.resources[id]
}

func (s *Server) connections() []connHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]connHandle, len(s.conns))
	copy(out, s.conns)
	return out
}

func (s *Server) addConnection(c connHandle) {
	s.mu.Lock()
	s.conns = append(s.conns, c)
	s.mu.Unlock()

	if fn := s.onConnect.Load(); fn != nil {
		(*fn)(c)
	}
	if s.stats != nil {
		s.stats.ConnectionsActive.Inc()
	}
}

// dropClosed removes every closed connection from the list, called by the
// monitor's CommitConnections.
func (s *Server) dropClosed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.conns[:0]
	dropped := 0
	for _, c := range s.conns {
		if c.Closed() {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	s.conns = kept
	if s.stats != nil && dropped > 0 {
		s.stats.ConnectionsActive.Add(-float64(dropped))
	}
	return dropped
}

// ConnectionCount returns the number of live connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// fanOut runs fn over every connection, summing bytes; on any child failure
// the running total is negated and the distinct errors (up to
// internal/cos.Errs' cap) are joined into one, matching spec.md §4.10's
// "sum of bytes, negated on any child failure" while still surfacing every
// kind of failure across a multi-connection fan-out rather than only the
// first.
func (s *Server) fanOut(fn func(connHandle) (int, error)) (int, error) {
	if !s.Active() {
		return 0, nil
	}
	total := 0
	var errs cos.Errs
	for _, c := range s.connections() {
		n, err := fn(c)
		total += n
		errs.Add(err)
	}
	if errs.Cnt() > 0 {
		return -total, errs.Err()
	}
	return total, nil
}

func (s *Server) Create(sr ShapeResources, createPacket []byte, dataPackets [][]byte) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.Create(sr, createPacket, dataPackets) })
}

func (s *Server) Update(packet []byte) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.Update(packet) })
}

func (s *Server) Destroy(destroyPacket []byte, resources []uint32) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.Destroy(destroyPacket, resources) })
}

func (s *Server) ReferenceResource(id uint32) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.ReferenceResource(id) })
}

func (s *Server) ReleaseResource(id uint32) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.ReleaseResource(id) })
}

// UpdateFrame fans a Control/Frame message out to every connection. dt is
// in seconds; each connection converts it to its own time unit.
func (s *Server) UpdateFrame(dt float64, flush bool) (int, error) {
	secondsToTimeUnit := 1e6 / float64(s.info.TimeUnitMicros)
	return s.fanOut(func(c connHandle) (int, error) { return c.UpdateFrame(dt, flush, secondsToTimeUnit) })
}

func (s *Server) UpdateTransfers(byteLimit int) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.UpdateTransfers(byteLimit) })
}

// Send fans a pre-encoded packet out to every connection, e.g. a Category
// or Material message that isn't tied to any one shape.
func (s *Server) Send(b []byte, allowCollation bool) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.Send(b, allowCollation) })
}

// SendCollated fans out a pre-built, uncompressed collated packet,
// re-collating its inner packets per the receiving connection's own
// settings (spec.md §4.8).
func (s *Server) SendCollated(col *collate.Collated) (int, error) {
	return s.fanOut(func(c connHandle) (int, error) { return c.SendCollated(col) })
}

// Reset implements the recovered Control/Reset semantics of
// SPEC_FULL.md §9.1: every resource body is dropped and a Control/Reset
// message is fanned out so each connection (and any downstream viewer)
// clears its own object/resource state.
func (s *Server) Reset() (int, error) {
	s.resMu.Lock()
	s.resources = make(map[uint32]*meshres.Resource)
	s.resMu.Unlock()

	for _, c := range s.connections() {
		c.Reset()
	}

	w := wire.NewWriter()
	w.Reset(wire.RoutingControl, wire.CtrlReset)
	if !(wire.Control{}.Write(w)) {
		return 0, wire.ErrTruncated
	}
	if err := w.Finalise(); err != nil {
		return 0, err
	}
	return s.Send(w.PacketBytes(), true)
}

// OpenFileStream creates a file-backed connection and adds it to the
// server's fan-out set immediately (spec.md §4.10: "participates in the
// same fan-out"); file streams have no accept/commit step since they are
// created synchronously by the embedder.
func (s *Server) OpenFileStream(path string) (*FileConnection, error) {
	fc, err := OpenFileStream(path, s.opts, s.info, s.stats, s.resourceSource)
	if err != nil {
		return nil, err
	}
	s.addConnection(fc)
	return fc, nil
}

// Close stops the monitor (if running) and closes every connection.
func (s *Server) Close() error {
	if s.monitor != nil {
		s.monitor.Stop(nil)
	}
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
