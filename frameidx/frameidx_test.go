package frameidx_test

import (
	"testing"

	"github.com/scenewire/scenewire/frameidx"
)

func TestEntryRoundTrip(t *testing.T) {
	e := frameidx.Entry{FrameNumber: 42, ByteOffset: 1 << 20, WallClock: 1700000000000}
	buf, err := e.MarshalMsg(nil)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got frameidx.Entry
	rest, err := got.UnmarshalMsg(buf)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unmarshal left %d trailing bytes", len(rest))
	}
	if got != e {
		t.Fatalf("got %+v, want %+v", got, e)
	}
}

func TestPutGetExact(t *testing.T) {
	idx, err := frameidx.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	want := frameidx.Entry{FrameNumber: 100, ByteOffset: 4096, WallClock: 5}
	if err := idx.Put(want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := idx.Get(100)
	if err != nil || !ok {
		t.Fatalf("get: %+v, %v, %v", got, ok, err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if _, ok, err := idx.Get(101); err != nil || ok {
		t.Fatalf("get missing frame: ok=%v err=%v, want ok=false", ok, err)
	}
}

func TestNearestFindsLastAtOrBefore(t *testing.T) {
	idx, err := frameidx.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	for _, frame := range []uint32{0, 10, 20, 30} {
		if err := idx.Put(frameidx.Entry{FrameNumber: frame, ByteOffset: int64(frame) * 100}); err != nil {
			t.Fatalf("put %d: %v", frame, err)
		}
	}

	got, ok, err := idx.Nearest(25)
	if err != nil || !ok {
		t.Fatalf("nearest(25): ok=%v err=%v", ok, err)
	}
	if got.FrameNumber != 20 {
		t.Fatalf("nearest(25) = frame %d, want 20", got.FrameNumber)
	}

	got, ok, err = idx.Nearest(20)
	if err != nil || !ok || got.FrameNumber != 20 {
		t.Fatalf("nearest(20) = %+v, ok=%v err=%v, want frame 20", got, ok, err)
	}

	if _, ok, err := idx.Nearest(0); err != nil || !ok {
		t.Fatalf("nearest(0) should find the frame-0 keyframe, ok=%v err=%v", ok, err)
	}
}

func TestNearestEmptyIndex(t *testing.T) {
	idx, err := frameidx.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	if _, ok, err := idx.Nearest(5); err != nil || ok {
		t.Fatalf("nearest on empty index: ok=%v err=%v, want ok=false", ok, err)
	}
}

func TestOpenAdvisoryFallsBackOnBadPath(t *testing.T) {
	// A directory that cannot contain a bolt-style data file: buntdb will
	// fail to open it, and OpenAdvisory must report ok=false rather than
	// panicking or propagating the error.
	if _, ok := frameidx.OpenAdvisory("/nonexistent/deeply/nested/path/index.db"); ok {
		t.Fatalf("expected OpenAdvisory to fail for an unwritable path")
	}
}
