package databuf

import "math"

// Pack quantizes value relative to origin at the given unit:
// packed = round((value - origin) / unit).
func Pack(value, origin float64, unit float32) int64 {
	return int64(math.Round((value - origin) / float64(unit)))
}

// Unpack reverses Pack: dest = packed*unit + origin.
func Unpack(packed int64, origin float64, unit float32) float64 {
	return float64(packed)*float64(unit) + origin
}

// WithinQuantisation reports whether packing value at (origin, unit) and
// unpacking it again stays within one quantisation unit of the original
// value (spec.md §4.3, §8).
func WithinQuantisation(packed int64, value, origin float64, unit float32) bool {
	diff := Unpack(packed, origin, unit) - value
	if diff < 0 {
		diff = -diff
	}
	return diff <= float64(unit)
}
