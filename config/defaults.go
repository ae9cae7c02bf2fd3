package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, environment variables, and profile files.

const (
	// DefaultCommandTimeout bounds the wait for each command's reply.
	DefaultCommandTimeout = 5 * time.Second

	// DefaultConnectTimeout bounds TCP/SSH connection establishment.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultGatewayPort is the standard SSH port.
	DefaultGatewayPort = 22

	// DefaultTranscriptMaxSizeMB is the rotation threshold for the
	// command/reply transcript file.
	DefaultTranscriptMaxSizeMB = 10

	// DefaultTranscriptBackups is how many rotated transcript files
	// are kept.
	DefaultTranscriptBackups = 3
)
