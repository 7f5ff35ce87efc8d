package server

import (
	"github.com/scenewire/scenewire/collate"
	"github.com/scenewire/scenewire/config"
)

// toCollateLevel converts config.CompressionLevel to collate.CompressionLevel.
// The two enums are defined independently (SPEC_FULL.md §4.14: config stays
// free of a dependency on the wire-codec packages) but share ordinal values,
// so the conversion is a direct cast.
func toCollateLevel(l config.CompressionLevel) collate.CompressionLevel {
	return collate.CompressionLevel(l)
}
