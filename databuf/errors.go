package databuf

import "errors"

var (
	// ErrQuantisationOverflow is returned when a packed value would lose
	// more than one quantisation unit of precision (spec.md §7).
	ErrQuantisationOverflow = errors.New("databuf: value exceeds quantisation unit on round-trip")
	// ErrTypeMismatch is returned on a read whose wire type/component
	// count cannot feed the destination buffer (spec.md §7).
	ErrTypeMismatch = errors.New("databuf: incompatible wire type for destination buffer")
	// ErrNotFloat is returned when a quantized write is attempted on a
	// non-float source buffer (spec.md §4.3: "only for f32 or f64").
	ErrNotFloat = errors.New("databuf: quantized packing requires an f32 or f64 source buffer")
	ErrTruncated = errors.New("databuf: packet has no room for this chunk")
)
