// Package core is the orchestration layer.  It composes a transport,
// an authenticated session, and the command registry into complete
// operational modes, and provides a builder that selects the right
// mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  rcon (session + protocol)  →  commands  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of grcon: a one-shot
// command (ExecMode) or the operator console (InteractiveMode).  Each
// mode owns its full lifecycle from connection establishment to
// teardown.
type Mode interface {
	Run(ctx context.Context) error
}
