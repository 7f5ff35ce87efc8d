package server

import "github.com/scenewire/scenewire/internal/cos"

// genConnID returns a short opaque connection identifier for logging and
// frameidx naming (internal/cos.GenSessionID, shared with the teacher's
// own short-id convention).
func genConnID() string { return cos.GenSessionID() }
