package cos_test

import (
	"errors"
	"testing"
	"time"

	"github.com/scenewire/scenewire/internal/cos"
)

func TestStopChClosesExactlyOnce(t *testing.T) {
	s := cos.NewStopCh()
	select {
	case <-s.Listen():
		t.Fatalf("stop channel should not be closed yet")
	default:
	}

	s.Close()
	s.Close() // must not panic on a double close

	select {
	case <-s.Listen():
	default:
		t.Fatalf("stop channel should be closed")
	}
}

func TestGenSessionIDIsUniqueAndNonEmpty(t *testing.T) {
	a := cos.GenSessionID()
	b := cos.GenSessionID()
	if a == "" || b == "" {
		t.Fatalf("session ids must not be empty")
	}
	if a == b {
		t.Fatalf("two consecutive session ids should differ: %q == %q", a, b)
	}
}

func TestErrsDeduplicatesByMessage(t *testing.T) {
	var e cos.Errs
	e.Add(nil)
	e.Add(errors.New("boom"))
	e.Add(errors.New("boom"))
	e.Add(errors.New("bang"))

	if e.Cnt() != 2 {
		t.Fatalf("count = %d, want 2 distinct errors", e.Cnt())
	}
	joined := e.Err()
	if joined == nil {
		t.Fatalf("expected a non-nil joined error")
	}
}

func TestErrsCapsAtFourDistinctErrors(t *testing.T) {
	var e cos.Errs
	for i := 0; i < 10; i++ {
		e.Add(errors.New(string(rune('a' + i))))
	}
	if e.Cnt() != 4 {
		t.Fatalf("count = %d, want capped at 4", e.Cnt())
	}
}

func TestErrsErrIsNilWhenEmpty(t *testing.T) {
	var e cos.Errs
	if err := e.Err(); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestBytePoolReturnsFixedSizeSlices(t *testing.T) {
	p := cos.NewBytePool(32)
	b := p.Get()
	if len(b) != 32 {
		t.Fatalf("len = %d, want 32", len(b))
	}
	b[0] = 0xff
	p.Put(b)

	b2 := p.Get()
	if len(b2) != 32 {
		t.Fatalf("len = %d, want 32 after reuse", len(b2))
	}
}

// sanity check that Runner is satisfiable by a trivial type, guarding
// against an accidental signature change breaking every implementer at once.
type fakeRunner struct{ stopped chan error }

func (f *fakeRunner) Name() string { return "fake" }
func (f *fakeRunner) Run() error   { <-f.stopped; return nil }
func (f *fakeRunner) Stop(err error) {
	select {
	case f.stopped <- err:
	default:
	}
}

func TestRunnerInterfaceIsSatisfiable(t *testing.T) {
	var r cos.Runner = &fakeRunner{stopped: make(chan error, 1)}
	done := make(chan error, 1)
	go func() { done <- r.Run() }()
	r.Stop(nil)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("runner did not stop in time")
	}
}
