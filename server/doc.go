// Package server implements the connection pipeline, resource registry,
// and connection monitor of spec.md §4.8–§4.10: the routing-agnostic half
// of scenewire that turns pre-encoded packets (built by the shapes and
// meshres packages) into bytes on a socket or a file, under the locking
// discipline of §5.
package server
