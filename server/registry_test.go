package server

import "testing"

func TestReferenceEnqueuesOnlyOnFirstReference(t *testing.T) {
	r := newRegistry()
	if first := r.reference(1); !first {
		t.Fatalf("first reference should report first=true")
	}
	if first := r.reference(1); first {
		t.Fatalf("second reference should report first=false")
	}
	id, ok := r.nextQueued()
	if !ok || id != 1 {
		t.Fatalf("nextQueued = (%d, %v), want (1, true)", id, ok)
	}
	if _, ok := r.nextQueued(); ok {
		t.Fatalf("queue should be drained after one reference")
	}
}

func TestReleaseDropsAtZeroRefs(t *testing.T) {
	r := newRegistry()
	r.reference(5)
	r.reference(5)

	if dropped, _ := r.release(5); dropped {
		t.Fatalf("release should not drop while refs remain")
	}
	dropped, needsDestroy := r.release(5)
	if !dropped {
		t.Fatalf("release should drop once refs reach zero")
	}
	if needsDestroy {
		t.Fatalf("a resource never started should not need a synthesized destroy")
	}
	if r.present(5) {
		t.Fatalf("record should be gone after dropping to zero")
	}
}

func TestReleaseAfterStartedNeedsDestroy(t *testing.T) {
	r := newRegistry()
	r.reference(9)
	r.markStarted(9)

	_, needsDestroy := r.release(9)
	if !needsDestroy {
		t.Fatalf("a resource that ever reached Creating should need a synthesized destroy")
	}
}

func TestMarkStartedRedefinesAReadyResource(t *testing.T) {
	r := newRegistry()
	r.reference(3)
	r.markStarted(3)
	r.markCompleted(3)

	rec := r.records[3]
	if rec.lifecycle.State().String() != "ready" {
		t.Fatalf("state = %v, want ready", rec.lifecycle.State())
	}

	r.markStarted(3) // a second transfer of the same resource id
	if rec.lifecycle.State().String() != "creating" {
		t.Fatalf("state after redefine = %v, want creating", rec.lifecycle.State())
	}
}

func TestRequeuePutsResourceBackAtFront(t *testing.T) {
	r := newRegistry()
	r.reference(1)
	r.reference(2)
	id, _ := r.nextQueued() // pops 1
	if id != 1 {
		t.Fatalf("expected to pop 1 first, got %d", id)
	}
	r.requeue(1)

	id, ok := r.nextQueued()
	if !ok || id != 1 {
		t.Fatalf("requeued resource should be popped next, got (%d, %v)", id, ok)
	}
}

func TestResetClearsEverything(t *testing.T) {
	r := newRegistry()
	r.reference(1)
	r.reference(2)
	r.reset()
	if r.count() != 0 {
		t.Fatalf("count after reset = %d, want 0", r.count())
	}
	if _, ok := r.nextQueued(); ok {
		t.Fatalf("queue should be empty after reset")
	}
}
