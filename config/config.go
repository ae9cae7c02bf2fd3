// Package config defines the runtime configuration for grcon and
// provides helpers for parsing SSH gateway specifications and loading
// server profiles.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Config holds every tuneable for a single grcon invocation.
type Config struct {
	// ── Target ───────────────────────────────────────────────────────
	Host           string
	Port           int
	Password       string
	ForceIPv4      bool
	ConnectTimeout time.Duration
	CommandTimeout time.Duration // per-command reply deadline

	// ── SSH gateway ──────────────────────────────────────────────────
	GatewaySpec    string // raw [user@]host[:port] from -T
	GatewayEnabled bool
	GatewayUser    string
	GatewayHost    string
	GatewayPort    int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Execution ────────────────────────────────────────────────────
	Command string   // one-shot verb; empty → interactive console
	Args    []string // parameters for the one-shot verb

	// ── Output ───────────────────────────────────────────────────────
	Verbose        int
	TranscriptPath string

	// ── Sources ──────────────────────────────────────────────────────
	EnvFile      string
	ProfilesPath string
	Profile      string
}

// gatewayRe matches [user@]host[:port].
var gatewayRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseGatewaySpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseGatewaySpec(spec string) (user, host string, port int, err error) {
	m := gatewayRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid gateway spec %q - expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultGatewayPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid gateway port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("gateway host is required")
	}
	return user, host, port, nil
}

// ApplyDefaults fills any timeout still unset after flags, env, and
// profile have been applied.
func (c *Config) ApplyDefaults() {
	if c.CommandTimeout == 0 {
		c.CommandTimeout = DefaultCommandTimeout
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.GatewayPort == 0 {
		c.GatewayPort = DefaultGatewayPort
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("server host is required (argument, GRCON_HOST, or --profile)")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server port %d out of range 1-65535", c.Port)
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command timeout must be positive")
	}
	if c.GatewayEnabled && c.GatewayHost == "" {
		return fmt.Errorf("gateway host is required")
	}
	return nil
}
