// Package mono provides a low-level monotonic clock, bypassing the
// wall-clock allocation that a plain time.Now() call carries.
package mono

import (
	_ "unsafe" // for go:linkname
)

// NanoTime returns a monotonic reading in nanoseconds. It is not related
// to wall-clock time and is only meaningful relative to another NanoTime
// call within the same process.
//
//go:linkname NanoTime runtime.nanotime
func NanoTime() int64

// Since returns the elapsed time, in nanoseconds, since a prior NanoTime reading.
func Since(start int64) int64 { return NanoTime() - start }
