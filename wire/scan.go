package wire

import "encoding/binary"

var markerBytes = func() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], Marker)
	return b
}()

// ScanForMarker returns the offset of the first occurrence of the packet
// marker in b, or -1 if none is found. Readers use this to recover from
// arbitrary leading bytes (spec.md §6.2) or to step over a packet whose
// declared payload_size cannot be trusted (the file-stream oversize
// exception, spec.md §4.4).
func ScanForMarker(b []byte) int {
	if len(b) < len(markerBytes) {
		return -1
	}
	for i := 0; i+len(markerBytes) <= len(b); i++ {
		if b[i] == markerBytes[0] && b[i+1] == markerBytes[1] && b[i+2] == markerBytes[2] && b[i+3] == markerBytes[3] {
			return i
		}
	}
	return -1
}
