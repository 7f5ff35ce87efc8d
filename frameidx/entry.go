// Package frameidx implements the optional on-disk frame index for a
// recorded file stream (SPEC_FULL.md §4.12): a tidwall/buntdb database
// keyed by zero-padded frame number, mapping a frame to its byte offset
// and wall-clock time so a viewer can seek directly to frame N instead of
// replaying a recording from the start.
package frameidx

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// Entry is one frame index record: frame number, the recording's byte
// offset when the frame was committed (taken before that frame's Keyframe
// marker and Control/Frame packet are written), and the wall-clock time it
// was written (unix nanoseconds).
type Entry struct {
	FrameNumber uint32
	ByteOffset  int64
	WallClock   int64
}

// MarshalMsg appends e's msgpack encoding to b, satisfying msgp.Marshaler.
// Hand-written rather than generated: the schema is three fixed fields and
// not worth a codegen step (matches the teacher's preference for msgp over
// JSON on hot/serialized-to-disk paths, e.g. ext/dsort's shard manifests).
func (e Entry) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 3)
	b = msgp.AppendUint32(b, e.FrameNumber)
	b = msgp.AppendInt64(b, e.ByteOffset)
	b = msgp.AppendInt64(b, e.WallClock)
	return b, nil
}

// UnmarshalMsg decodes e from b, returning the remaining unread bytes.
func (e *Entry) UnmarshalMsg(b []byte) ([]byte, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	if n != 3 {
		return b, fmt.Errorf("frameidx: entry array has %d fields, want 3", n)
	}
	frameNumber, b, err := msgp.ReadUint32Bytes(b)
	if err != nil {
		return b, err
	}
	byteOffset, b, err := msgp.ReadInt64Bytes(b)
	if err != nil {
		return b, err
	}
	wallClock, b, err := msgp.ReadInt64Bytes(b)
	if err != nil {
		return b, err
	}
	e.FrameNumber, e.ByteOffset, e.WallClock = frameNumber, byteOffset, wallClock
	return b, nil
}

// key zero-pads frame for lexicographic == numeric ordering in buntdb.
func key(frame uint32) string { return fmt.Sprintf("%010d", frame) }
