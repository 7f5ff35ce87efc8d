package server

import (
	"sync"

	"github.com/scenewire/scenewire/meshres"
)

// resourceRecord is one entry in a connection's resource registry
// (spec.md §4.9): a refcounted mesh resource plus this connection's own
// view of its meshres.Lifecycle (each connection streams the resource
// independently, so a viewer that joins late still needs the full
// Create..Finalise sequence even if another connection already has it).
type resourceRecord struct {
	refs      int
	lifecycle meshres.Lifecycle
}

// registry is the per-connection resource table, guarded by lock *R*
// (spec.md §5), independent of *P* and *S* so reference_resource can run
// from the create path while another thread is mid-send.
type registry struct {
	mu      sync.Mutex
	records map[uint32]*resourceRecord
	queue   []uint32 // resources referenced but not yet started, FIFO
}

func newRegistry() *registry {
	return &registry{records: make(map[uint32]*resourceRecord)}
}

// reference increments id's refcount, enqueueing it for transfer on first
// reference. It reports whether this was the first reference.
func (r *registry) reference(id uint32) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		rec = &resourceRecord{}
		r.records[id] = rec
		first = true
	}
	rec.refs++
	if first {
		r.queue = append(r.queue, id)
	}
	return first
}

// release decrements id's refcount. It reports whether the record dropped
// to zero and, if so, whether a synthetic Destroy must be emitted (the
// resource was ever started or completed).
func (r *registry) release(id uint32) (dropped, needsDestroy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, false
	}
	rec.refs--
	if rec.refs > 0 {
		return false, false
	}
	needsDestroy = rec.lifecycle.State() != meshres.Nonexistent
	delete(r.records, id)
	return true, needsDestroy
}

// nextQueued pops the next resource id awaiting transfer, or returns
// ok == false if the queue is empty.
func (r *registry) nextQueued() (id uint32, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return 0, false
	}
	id, r.queue = r.queue[0], r.queue[1:]
	return id, true
}

// requeue puts id back at the front of the queue, used when a resource is
// released mid-transfer and its packer transfer is cancelled.
func (r *registry) requeue(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return // released entirely while queued; drop silently
	}
	r.queue = append([]uint32{id}, r.queue...)
}

// markStarted/markCompleted drive this connection's view of the
// resource's meshres.Lifecycle as its packer transfer begins/finishes, so
// a later release knows whether to emit a Destroy (any state past
// Nonexistent means the peer has at least a Create for it). Redefine
// reopens a Ready resource back into Creating when the same id is
// transferred a second time on this connection.
func (r *registry) markStarted(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return
	}
	if rec.lifecycle.State() == meshres.Ready {
		_ = rec.lifecycle.Redefine()
		return
	}
	_ = rec.lifecycle.Create()
}

func (r *registry) markCompleted(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		_ = rec.lifecycle.Finalise()
	}
}

// present reports whether id currently has any references.
func (r *registry) present(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[id]
	return ok
}

// reset drops every record and pending queue entry (server Reset()).
func (r *registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[uint32]*resourceRecord)
	r.queue = nil
}

// count returns the number of distinct resources currently referenced.
func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
