// Package config holds ServerOptions/ServerInfoOptions construction,
// defaulting, and JSON (de)serialization for an embedder (spec.md §6.3).
package config

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Flags mirrors the connection-level server flags of spec.md §4.8.
type Flags uint16

const (
	NakedFrameMessage Flags = 1 << iota
	Collate
	Compress
)

// CompressionLevel mirrors collate.CompressionLevel without importing it,
// keeping config free of a dependency on the wire-codec packages; server
// converts between the two at construction time.
type CompressionLevel uint8

const (
	None CompressionLevel = iota
	Low
	Medium
	High
	VeryHigh
)

// ServerOptions are the options recognized when constructing a server
// (spec.md §6.3).
type ServerOptions struct {
	ListenPort       uint16           `json:"listen_port"`
	PortRange        uint16           `json:"port_range"`
	Flags            Flags            `json:"flags"`
	AsyncTimeoutMs   uint32           `json:"async_timeout_ms"`
	ClientBufferSize uint16           `json:"client_buffer_size"`
	CompressionLevel CompressionLevel `json:"compression_level"`
}

// DefaultServerOptions returns the spec.md §6.3 defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		ListenPort:       33500,
		PortRange:        0,
		Flags:            NakedFrameMessage | Collate,
		AsyncTimeoutMs:   5000,
		ClientBufferSize: 65504,
		CompressionLevel: Medium,
	}
}

// ServerInfoOptions are the server-info options of spec.md §6.3.
type ServerInfoOptions struct {
	TimeUnitMicros   uint64 `json:"time_unit_us"`
	DefaultFrameTime uint32 `json:"default_frame_time"`
	CoordinateFrame  uint8  `json:"coordinate_frame"`
}

// DefaultServerInfoOptions returns the spec.md §6.3 defaults (coordinate
// frame XYZ == 0).
func DefaultServerInfoOptions() ServerInfoOptions {
	return ServerInfoOptions{
		TimeUnitMicros:   1000,
		DefaultFrameTime: 33,
		CoordinateFrame:  0,
	}
}

// Marshal serializes opts with json-iterator.
func (o ServerOptions) Marshal() ([]byte, error) { return json.Marshal(o) }

// Unmarshal parses data into a ServerOptions seeded with defaults for
// any field the JSON omits.
func Unmarshal(data []byte) (ServerOptions, error) {
	opts := DefaultServerOptions()
	err := json.Unmarshal(data, &opts)
	return opts, err
}

// Marshal serializes opts with json-iterator.
func (o ServerInfoOptions) Marshal() ([]byte, error) { return json.Marshal(o) }

// UnmarshalInfo parses data into a ServerInfoOptions seeded with defaults
// for any field the JSON omits.
func UnmarshalInfo(data []byte) (ServerInfoOptions, error) {
	opts := DefaultServerInfoOptions()
	err := json.Unmarshal(data, &opts)
	return opts, err
}
