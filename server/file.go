package server

import (
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/scenewire/scenewire/config"
	"github.com/scenewire/scenewire/frameidx"
	"github.com/scenewire/scenewire/internal/nlog"
	"github.com/scenewire/scenewire/stats"
	"github.com/scenewire/scenewire/wire"
)

// FileSink wraps an *os.File, tracking the write offset so
// FileConnection can record frameidx.Entry.ByteOffset for each frame.
// Unlike TCPSink it places no ceiling on a single write: the file-stream
// oversize exception of spec.md §4.4 relies on the writer already having
// set FlagNoCrc, not on anything FileSink itself checks.
type FileSink struct {
	mu     sync.Mutex
	f      *os.File
	offset int64
}

func (s *FileSink) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.f.Write(b)
	s.offset += int64(n)
	return n, err
}

func (s *FileSink) Close() error { return s.f.Close() }

func (s *FileSink) tell() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// FileConnection is the file-stream sibling of a TCP connection (spec.md
// §4.10, §6.2): it writes a ServerInfo and a placeholder FrameCount at
// open, optionally builds a frameidx.Index of Control/Frame offsets as it
// goes, and rewrites the real frame count at Close.
type FileConnection struct {
	*Connection
	sink             *FileSink
	frameCountOffset int64
	frameCount       uint32
	frameCountMu     sync.Mutex
	idx              *frameidx.Index
}

// OpenFileStream creates path, writes the standalone ServerInfo and a
// placeholder FrameCount, and returns a FileConnection ready to receive
// the same fan-out calls as a TCP connection (spec.md §4.10's "open a
// file-backed connection that participates in the same fan-out").
func OpenFileStream(path string, opts config.ServerOptions, info wire.ServerInfo, sc *stats.Collector, rs ResourceSource) (*FileConnection, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "server: open file stream %s", path)
	}
	sink := &FileSink{f: f}

	w := wire.NewWriter()
	w.Reset(wire.RoutingServerInfo, 0)
	if !info.Write(w) {
		f.Close()
		return nil, wire.ErrTruncated
	}
	if err := w.Finalise(); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := sink.Write(w.PacketBytes()); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "server: writing ServerInfo to %s", path)
	}

	frameCountOffset := sink.tell()
	w.Reset(wire.RoutingControl, wire.CtrlFrameCount)
	wire.Control{Value32: 0}.Write(w)
	if err := w.Finalise(); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := sink.Write(w.PacketBytes()); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "server: writing placeholder FrameCount to %s", path)
	}

	idx, ok := frameidx.OpenAdvisory(path + ".idx")
	if !ok {
		idx = nil
	}

	fc := &FileConnection{
		Connection:       newConnection(genConnID(), sink, opts, true, sc, rs),
		sink:             sink,
		frameCountOffset: frameCountOffset,
		idx:              idx,
	}
	return fc, nil
}

// UpdateFrame wraps Connection.UpdateFrame to additionally emit a
// Control/Keyframe marker and record a frameidx entry for this frame
// (SPEC_FULL.md §9.1, §4.12); a missing or failed index is advisory only.
func (c *FileConnection) UpdateFrame(dt float64, flush bool, secondsToTimeUnit float64) (int, error) {
	c.frameCountMu.Lock()
	frameNumber := c.frameCount
	c.frameCount++
	c.frameCountMu.Unlock()

	offset := c.sink.tell()

	kw := wire.NewWriter()
	kw.Reset(wire.RoutingControl, wire.CtrlKeyframe)
	wire.Control{Value64: uint64(frameNumber)}.Write(kw)
	if err := kw.Finalise(); err != nil {
		return 0, err
	}
	n0, err := c.send(kw.PacketBytes(), true)
	if err != nil {
		return n0, err
	}

	n1, err := c.Connection.UpdateFrame(dt, flush, secondsToTimeUnit)
	total := n0 + n1
	if err != nil {
		return total, err
	}

	if c.idx != nil {
		entry := frameidx.Entry{FrameNumber: frameNumber, ByteOffset: offset, WallClock: time.Now().UnixNano()}
		if putErr := c.idx.Put(entry); putErr != nil {
			nlog.Warningf("server: frameidx put frame %d: %v", frameNumber, putErr)
		}
	}
	return total, nil
}

// Close rewrites the placeholder FrameCount with the real count, flushes,
// and closes the file and index.
func (c *FileConnection) Close() error {
	if err := c.Connection.Flush(); err != nil {
		nlog.Warningf("server: flush on close: %v", err)
	}

	c.frameCountMu.Lock()
	count := c.frameCount
	c.frameCountMu.Unlock()

	w := wire.NewWriter()
	w.Reset(wire.RoutingControl, wire.CtrlFrameCount)
	wire.Control{Value32: count}.Write(w)
	if err := w.Finalise(); err != nil {
		return err
	}
	if _, err := c.sink.f.WriteAt(w.PacketBytes(), c.frameCountOffset); err != nil {
		return errors.Wrapf(err, "server: connection %s: rewriting FrameCount", c.id)
	}
	if err := c.sink.f.Sync(); err != nil {
		nlog.Warningf("server: fsync on close: %v", err)
	}

	if c.idx != nil {
		if err := c.idx.Close(); err != nil {
			nlog.Warningf("server: close frameidx: %v", err)
		}
	}
	return c.Connection.Close()
}
