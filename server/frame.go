package server

import (
	"math"

	"github.com/scenewire/scenewire/internal/nlog"
)

// clampFrameValue32 rounds a frame duration already expressed in server
// time units to the nearest u32. SPEC_FULL.md §9.2 resolves spec.md's
// silence on overflow: rather than wrapping or truncating, a value beyond
// u32::MAX clamps to it and logs a warning, since a single-frame
// discontinuity is a better failure mode for a viewer than a silently
// wrapped (and now much smaller) time delta.
func clampFrameValue32(ticks float64) uint32 {
	if ticks < 0 {
		return 0
	}
	rounded := math.Round(ticks)
	if rounded > math.MaxUint32 {
		nlog.Warningf("server: frame duration %.0f ticks exceeds uint32, clamping", rounded)
		return math.MaxUint32
	}
	return uint32(rounded)
}

func nlogMissingResource(connID string, resourceID uint32) {
	nlog.Warningf("server: connection %s: transient shape references resource %d, not yet present", connID, resourceID)
}
