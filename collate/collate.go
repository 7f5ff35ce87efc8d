// Package collate implements the collated packet (spec.md §3, §4.4): an
// outer packet whose payload is a concatenation of whole inner packets,
// optionally run through a streaming compressor.
package collate

import (
	"bytes"
	"errors"

	"github.com/scenewire/scenewire/wire"
)

// MessageID is the single message id used under wire.RoutingCollatedPacket;
// collated packets carry no further message-level dispatch.
const MessageID uint16 = 1

// FlagCompress marks the inner concatenation as lz4-compressed.
const FlagCompress uint16 = 1 << 0

var (
	// ErrDoesNotFit is the add() sentinel of spec.md §4.4: the packet did
	// not fit the remaining budget and was not appended.
	ErrDoesNotFit = errors.New("collate: packet does not fit remaining budget")
	ErrEmpty      = errors.New("collate: nothing to finalise")
)

// Collated accumulates whole inner packets and finalises them into one
// outer CollatedPacket, per connection send cycle.
type Collated struct {
	inner    bytes.Buffer
	compress bool
	level    CompressionLevel
	maxBytes int // 0 == unbounded (file-stream oversize path)
}

// New returns a Collated that compresses at level when compress is true.
// maxBytes bounds the accumulated inner-packet bytes before compression;
// pass 0 for the file-stream path, which has no such bound (spec.md §4.4's
// file-only oversize exception).
func New(compress bool, level CompressionLevel, maxBytes int) *Collated {
	return &Collated{compress: compress && level != None, level: level, maxBytes: maxBytes}
}

// Reset clears accumulated inner packets, keeping the configured compression settings.
func (c *Collated) Reset() { c.inner.Reset() }

// Empty reports whether any inner packet has been added since Reset.
func (c *Collated) Empty() bool { return c.inner.Len() == 0 }

// Len returns the number of uncompressed inner-packet bytes accumulated so far.
func (c *Collated) Len() int { return c.inner.Len() }

// Compressed reports whether Finalise would compress this collator's
// contents, given its configured level.
func (c *Collated) Compressed() bool { return c.compress }

// Bytes returns the raw concatenated inner-packet bytes accumulated so
// far, for callers that need to re-iterate them uncompressed (the
// Server.SendCollated fan-out path of spec.md §4.8, which can only
// re-distribute an uncompressed collator).
func (c *Collated) Bytes() []byte { return c.inner.Bytes() }

// Add appends one whole inner packet (header+payload+optional CRC) and
// returns the number of bytes accepted, or ErrDoesNotFit if appending would
// exceed maxBytes; the collator is left unchanged in that case and the
// caller should Finalise and start a fresh Collated.
func (c *Collated) Add(packetBytes []byte) (int, error) {
	if c.maxBytes > 0 && c.inner.Len()+len(packetBytes) > c.maxBytes {
		return 0, ErrDoesNotFit
	}
	n, _ := c.inner.Write(packetBytes)
	return n, nil
}

// Finalise writes the outer CollatedPacket to w: the inner-packet header
// (flags, reserved, uncompressed_bytes) followed by either the raw
// concatenation or its lz4-compressed form, depending on c.compress.
// allowOversize must be true only on the file-stream sink path; Finalise
// forwards it to w.AllowOversize so the 65535-byte ceiling is lifted there
// and only there.
func (c *Collated) Finalise(w *wire.Writer, allowOversize bool) error {
	if c.Empty() {
		return ErrEmpty
	}
	w.AllowOversize(allowOversize)
	w.Reset(wire.RoutingCollatedPacket, MessageID)

	flags := uint16(0)
	body := c.inner.Bytes()
	if c.compress {
		flags |= FlagCompress
		compressed, err := compressLZ4(body, c.level)
		if err != nil {
			return err
		}
		body = compressed
	}
	if !w.WriteUint16(flags) || !w.WriteUint16(0) || !w.WriteUint32(uint32(c.inner.Len())) {
		return wire.ErrTruncated
	}
	if !w.WriteBytes(body) {
		return wire.ErrTruncated
	}
	return w.Finalise()
}

// Inflate reverses Finalise's payload encoding given a parsed outer packet's
// Reader, returning the concatenated inner-packet bytes.
func Inflate(r *wire.Reader) ([]byte, error) {
	flags, ok := r.ReadUint16()
	if !ok {
		return nil, wire.ErrTruncated
	}
	if _, ok = r.ReadUint16(); !ok { // reserved
		return nil, wire.ErrTruncated
	}
	uncompressed, ok := r.ReadUint32()
	if !ok {
		return nil, wire.ErrTruncated
	}
	rest, ok := r.ReadBytes(r.Remaining())
	if !ok {
		return nil, wire.ErrTruncated
	}
	if flags&FlagCompress == 0 {
		return rest, nil
	}
	return decompressLZ4(rest, int(uncompressed))
}
