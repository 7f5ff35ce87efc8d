package server

import "errors"

var (
	// ErrResourceNotFound marks a queued transfer whose resource id has no
	// body registered with the server (spec.md §7); UpdateTransfers logs
	// and skips it rather than treating it as a hard failure. The skipped id
	// is taken off the transfer queue; a later DefineResource does not
	// requeue it.
	ErrResourceNotFound = errors.New("server: resource not found")
	// ErrConnectionLost marks a connection whose sink write failed or whose
	// peer closed; the connection flags itself disconnected and is dropped
	// at the next CommitConnections.
	ErrConnectionLost = errors.New("server: connection lost")
	// ErrCollatedCompressed rejects SendCollated on a compressed collator:
	// re-fanning compressed bytes to a connection with different
	// compression settings would require decompressing first, which this
	// path does not do (spec.md §4.8).
	ErrCollatedCompressed = errors.New("server: cannot fan out a compressed collated packet")
)
