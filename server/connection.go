package server

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/scenewire/scenewire/collate"
	"github.com/scenewire/scenewire/config"
	"github.com/scenewire/scenewire/internal/nlog"
	"github.com/scenewire/scenewire/meshres"
	"github.com/scenewire/scenewire/stats"
	"github.com/scenewire/scenewire/wire"
)

// ShapeResources describes the resources a Create/Data message references,
// supplied by the caller (who built the packets with the shapes package)
// alongside the pre-encoded bytes. Connection is deliberately ignorant of
// shape wire formats (spec.md's design note: explicit parameters instead
// of hidden globals extends here to hidden payload introspection); it only
// needs to know which resource ids to reference and whether the shape is
// transient or complex.
type ShapeResources struct {
	Transient     bool     // object_id == 0
	Complex       bool     // emits Data messages immediately after Create
	SkipResources bool     // FlagSkipResources was set
	Resources     []uint32 // resource ids enumerated by the shape
}

// Connection is one client's or one recording file's half of the pipeline
// (spec.md §4.8): an assembly writer under lock *P*, a collator and sink
// under lock *S*, and a resource registry under its own lock *R*.
type Connection struct {
	id string

	flags            config.Flags
	compressionLevel config.CompressionLevel

	p sync.Mutex // packet assembly
	s sync.Mutex // send + collator

	sink       Sink
	collator   *collate.Collated
	scratch    *wire.Writer // reused under P for Control/Frame and synth destroys
	maxCollate int

	allowOversizeOnSink bool // true only for the file-stream variant

	reg            *registry
	packer         meshres.Packer
	resourceSource ResourceSource

	closed atomic.Bool
	sent   atomic.Int64

	statsCollector *stats.Collector
}

// ResourceSource resolves a resource id to the meshres.Resource a
// connection's packer should transfer. The server supplies this at
// connection construction; Connection itself holds no resource bodies.
type ResourceSource func(id uint32) *meshres.Resource

// NewConnection constructs a standalone Connection around a caller-supplied
// Sink (spec.md §4.8), for embedders whose transport is neither a TCP
// socket nor a recording file. allowOversize mirrors the file-stream
// oversize exception of spec.md §4.4; pass false unless sink truly imposes
// no 65535-byte ceiling of its own.
func NewConnection(sink Sink, opts config.ServerOptions, allowOversize bool, sc *stats.Collector, rs ResourceSource) *Connection {
	return newConnection(genConnID(), sink, opts, allowOversize, sc, rs)
}

func newConnection(id string, sink Sink, opts config.ServerOptions, allowOversize bool, sc *stats.Collector, rs ResourceSource) *Connection {
	collateEnabled := opts.Flags&config.Collate != 0
	compressEnabled := collateEnabled && opts.Flags&config.Compress != 0
	maxCollate := int(opts.ClientBufferSize)
	if allowOversize {
		maxCollate = 0 // file-stream oversize exception, spec.md §4.4
	}
	return &Connection{
		id:                  id,
		flags:               opts.Flags,
		compressionLevel:    opts.CompressionLevel,
		sink:                sink,
		collator:            collate.New(compressEnabled, toCollateLevel(opts.CompressionLevel), maxCollate),
		scratch:             wire.NewWriter(),
		maxCollate:          maxCollate,
		allowOversizeOnSink: allowOversize,
		reg:                 newRegistry(),
		resourceSource:      rs,
		statsCollector:      sc,
	}
}

// ID returns the connection's opaque identifier (internal/cos.GenSessionID).
func (c *Connection) ID() string { return c.id }

// Closed reports whether the connection has already failed a write.
func (c *Connection) Closed() bool { return c.closed.Load() }

// BytesSent returns the cumulative bytes written to the sink.
func (c *Connection) BytesSent() int64 { return c.sent.Load() }

// Close closes the underlying sink; subsequent sends fail with ErrConnectionLost.
func (c *Connection) Close() error {
	c.s.Lock()
	defer c.s.Unlock()
	c.closed.Store(true)
	return c.sink.Close()
}

// send implements spec.md §4.8's send(bytes, allow_collation).
func (c *Connection) send(b []byte, allowCollation bool) (int, error) {
	c.s.Lock()
	defer c.s.Unlock()
	return c.sendLocked(b, allowCollation)
}

func (c *Connection) sendLocked(b []byte, allowCollation bool) (int, error) {
	if c.closed.Load() {
		return 0, ErrConnectionLost
	}
	collating := c.flags&config.Collate != 0
	if collating && !allowCollation {
		if err := c.flushCollatorLocked(); err != nil {
			return 0, err
		}
		return c.writeSinkLocked(b)
	}
	if !collating {
		return c.writeSinkLocked(b)
	}
	if c.maxCollate > 0 && c.collator.Len()+len(b) > c.maxCollate {
		if err := c.flushCollatorLocked(); err != nil {
			return 0, err
		}
	}
	if _, err := c.collator.Add(b); err != nil {
		if err := c.flushCollatorLocked(); err != nil {
			return 0, err
		}
		return c.writeSinkLocked(b)
	}
	return len(b), nil
}

func (c *Connection) flushCollatorLocked() error {
	if c.collator.Empty() {
		return nil
	}
	w := wire.NewWriter()
	if err := c.collator.Finalise(w, c.allowOversizeOnSink); err != nil {
		return err
	}
	if _, err := c.writeSinkLocked(w.PacketBytes()); err != nil {
		return err
	}
	c.collator.Reset()
	return nil
}

// Flush forces any collated bytes out to the sink; called at the end of a
// frame and from update_frame.
func (c *Connection) Flush() error {
	c.s.Lock()
	defer c.s.Unlock()
	return c.flushCollatorLocked()
}

func (c *Connection) writeSinkLocked(b []byte) (int, error) {
	n, err := c.sink.Write(b)
	if err != nil {
		c.closed.Store(true)
		return n, errors.Wrapf(ErrConnectionLost, "connection %s: sink write: %v", c.id, err)
	}
	c.sent.Add(int64(n))
	if c.statsCollector != nil {
		c.statsCollector.BytesSent.Add(float64(n))
	}
	return n, nil
}

// SendCollated implements spec.md §4.8's send(collated_packet): it rejects
// an already-compressed collator (compression is not reversible in this
// fan-out path) and otherwise iterates the inner packets, sending each
// through this connection's own collation/compression settings.
func (c *Connection) SendCollated(col *collate.Collated) (int, error) {
	if col.Compressed() {
		return 0, ErrCollatedCompressed
	}
	body := col.Bytes()
	total := 0
	for len(body) > 0 {
		n, err := wire.PacketLen(body)
		if err != nil {
			return total, err
		}
		sent, err := c.send(body[:n], true)
		total += sent
		if err != nil {
			return total, err
		}
		body = body[n:]
	}
	return total, nil
}

// Create runs the Create (and, for complex shapes, the immediately
// following Data) side of spec.md §4.9 under lock *P*, then sends the
// packets with collation allowed.
func (c *Connection) Create(sr ShapeResources, createPacket []byte, dataPackets [][]byte) (int, error) {
	c.p.Lock()
	defer c.p.Unlock()

	if !sr.SkipResources {
		if !sr.Transient {
			for _, id := range sr.Resources {
				c.reg.reference(id)
			}
		} else {
			for _, id := range sr.Resources {
				if !c.reg.present(id) {
					nlogMissingResource(c.id, id)
				}
			}
		}
	}

	total, err := c.send(createPacket, true)
	if err != nil {
		return total, err
	}
	if sr.Complex {
		for _, pkt := range dataPackets {
			n, err := c.send(pkt, true)
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// Update sends a pre-encoded Update packet under lock *P*.
func (c *Connection) Update(packet []byte) (int, error) {
	c.p.Lock()
	defer c.p.Unlock()
	return c.send(packet, true)
}

// Destroy sends a pre-encoded Destroy packet for a persistent shape and
// releases its enumerated resources, synthesizing resource Destroy
// messages for any whose refcount reaches zero (spec.md §4.9).
func (c *Connection) Destroy(destroyPacket []byte, resources []uint32) (int, error) {
	c.p.Lock()
	defer c.p.Unlock()

	total, err := c.send(destroyPacket, true)
	if err != nil {
		return total, err
	}
	for _, id := range resources {
		n, err := c.releaseResourceLocked(id)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReferenceResource increments id's refcount, enqueueing it for transfer
// on first reference (spec.md §4.9, part of Server's fan-out surface).
func (c *Connection) ReferenceResource(id uint32) (int, error) {
	c.p.Lock()
	defer c.p.Unlock()
	c.reg.reference(id)
	return 0, nil
}

// ReleaseResource decrements id's refcount, synthesizing a resource
// Destroy message if it was ever started or completed and drops to zero.
func (c *Connection) ReleaseResource(id uint32) (int, error) {
	c.p.Lock()
	defer c.p.Unlock()
	return c.releaseResourceLocked(id)
}

// releaseResourceLocked implements the release half of spec.md §4.9;
// callers must already hold *P*.
func (c *Connection) releaseResourceLocked(id uint32) (int, error) {
	dropped, needsDestroy := c.reg.release(id)
	if !dropped || !needsDestroy {
		return 0, nil
	}
	c.scratch.Reset(wire.RoutingMesh, meshres.MsgDestroy)
	if !meshres.WriteDestroy(c.scratch, id) {
		return 0, wire.ErrTruncated
	}
	if err := c.scratch.Finalise(); err != nil {
		return 0, err
	}
	return c.send(c.scratch.PacketBytes(), true)
}

// Send exposes the raw send primitive (spec.md §4.8's send(bytes,
// allow_collation)) for Server.Send's fan-out.
func (c *Connection) Send(b []byte, allowCollation bool) (int, error) {
	return c.send(b, allowCollation)
}

// ResourceCount returns the number of resources this connection currently
// references.
func (c *Connection) ResourceCount() int { return c.reg.count() }

// Reset drops every resource reference and cancels any in-flight packer
// transfer without emitting per-resource Destroy messages: the caller
// (Server.Reset) fans out a single Control/Reset once every connection has
// been reset, which the
// recovered original_source/ semantics define as clearing every object
// and resource across all connections in one stroke (SPEC_FULL.md §9.1).
func (c *Connection) Reset() {
	c.p.Lock()
	defer c.p.Unlock()
	c.packer.Cancel()
	c.reg.reset()
}

// UpdateFrame implements spec.md §4.8's update_frame(dt, flush).
func (c *Connection) UpdateFrame(dt float64, flush bool, secondsToTimeUnit float64) (int, error) {
	c.p.Lock()
	defer c.p.Unlock()

	ctrl := wire.Control{Value32: clampFrameValue32(dt * secondsToTimeUnit)}
	if !flush {
		ctrl.Flags |= wire.FrameFlagPersist
	}
	c.scratch.Reset(wire.RoutingControl, wire.CtrlFrame)
	if !ctrl.Write(c.scratch) {
		return 0, wire.ErrTruncated
	}
	if err := c.scratch.Finalise(); err != nil {
		return 0, err
	}
	allowCollation := c.flags&config.NakedFrameMessage == 0
	n, err := c.send(c.scratch.PacketBytes(), allowCollation)
	if err != nil {
		return n, err
	}
	if err := c.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// UpdateTransfers implements spec.md §4.8's update_transfers(byte_limit):
// it repeatedly advances the resource packer until either the byte budget
// is exhausted, the current resource finishes and the queue empties, or a
// queued resource was released mid-transfer.
func (c *Connection) UpdateTransfers(byteLimit int) (int, error) {
	c.p.Lock()
	defer c.p.Unlock()

	total := 0
	for total < byteLimit {
		if c.packer.Idle() {
			id, ok := c.reg.nextQueued()
			if !ok {
				break
			}
			if !c.reg.present(id) {
				continue // released while queued
			}
			res := c.pendingResource(id)
			if res == nil {
				nlog.Warningf("server: connection %s: %v: resource %d", c.id, ErrResourceNotFound, id)
				continue
			}
			if err := c.packer.Transfer(res); err != nil {
				continue
			}
			c.reg.markStarted(id)
		}

		w := wire.NewWriter()
		more, err := c.packer.NextPacket(w, byteLimit-total)
		if err != nil {
			lastID, _ := c.packer.LastCompleted()
			c.packer.Cancel()
			c.reg.requeue(lastID)
			return total, err
		}
		if err := w.Finalise(); err != nil {
			return total, err
		}
		n, sendErr := c.send(w.PacketBytes(), true)
		total += n
		if sendErr != nil {
			return total, sendErr
		}
		if !more {
			id, ok := c.packer.LastCompleted()
			if ok {
				c.reg.markCompleted(id)
			}
		}
	}
	return total, nil
}

// pendingResource resolves a queued resource id to the meshres.Resource
// whose buffers should be transferred. Connection holds no resource
// bodies itself: the owning Server looks them up through a
// ResourceSource, set on the connection at construction.
func (c *Connection) pendingResource(id uint32) *meshres.Resource {
	if c.resourceSource == nil {
		return nil
	}
	return c.resourceSource(id)
}
