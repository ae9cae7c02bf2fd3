// Package cmd wires up the CLI flags and dispatches to a grcon mode.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"grcon/config"
	"grcon/internal/core"
	"grcon/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X grcon/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate grcon mode.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{}
	fs := flag.NewFlagSet("grcon", flag.ContinueOnError)

	// ── target ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.Password, "password", "P", "", "Server password (prefer GRCON_PASSWORD or the prompt)")
	fs.BoolVarP(&cfg.ForceIPv4, "ipv4", "4", false, "Force IPv4")

	var timeoutSec, connectSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", 0, "Per-command reply timeout in seconds")
	fs.IntVar(&connectSec, "connect-timeout", 0, "Connect and handshake timeout in seconds")

	// ── SSH gateway ──────────────────────────────────────────────
	fs.StringVarP(&cfg.GatewaySpec, "gateway", "T", "", "SSH gateway via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", "", "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", false, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", false, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", false, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", "", "Custom known_hosts path")

	// ── sources ──────────────────────────────────────────────────
	fs.StringVar(&cfg.EnvFile, "env-file", "", "Load environment from file (default .env if present)")
	fs.StringVar(&cfg.ProfilesPath, "config", "", "Server profiles YAML file")
	fs.StringVar(&cfg.Profile, "profile", "", "Named profile from the profiles file")

	// ── output ───────────────────────────────────────────────────
	fs.StringVar(&cfg.TranscriptPath, "transcript", "", "Append a timestamped session transcript to file")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("grcon %s\n", version)
		return nil
	}

	if timeoutSec > 0 {
		cfg.CommandTimeout = time.Duration(timeoutSec) * time.Second
	}
	if connectSec > 0 {
		cfg.ConnectTimeout = time.Duration(connectSec) * time.Second
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── layered sources: .env → env → profile ────────────────────
	if err := config.LoadEnvFile(cfg.EnvFile); err != nil {
		return err
	}
	config.ApplyEnv(cfg)

	if cfg.Profile != "" {
		if cfg.ProfilesPath == "" {
			return fmt.Errorf("--profile requires --config <file>")
		}
		profiles, err := config.LoadProfiles(cfg.ProfilesPath)
		if err != nil {
			return err
		}
		if err := profiles.Apply(cfg.Profile, cfg); err != nil {
			return err
		}
	}

	// ── gateway spec ─────────────────────────────────────────────
	if cfg.GatewaySpec != "" {
		user, host, port, err := config.ParseGatewaySpec(cfg.GatewaySpec)
		if err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		cfg.GatewayEnabled = true
		cfg.GatewayUser = user
		cfg.GatewayHost = host
		cfg.GatewayPort = port
	}

	cfg.ApplyDefaults()

	if cfg.Password == "" {
		pw, err := promptPassword(cfg.Host, cfg.Port)
		if err != nil {
			return err
		}
		cfg.Password = pw
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// parsePositional consumes host, port, and an optional one-shot
// command with its parameters.  Host and port may also come from the
// environment or a profile, so they are optional here.
func parsePositional(cfg *config.Config, remaining []string) error {
	if len(remaining) == 0 {
		return nil
	}
	cfg.Host = remaining[0]

	if len(remaining) < 2 {
		return fmt.Errorf("port required")
	}
	port, err := strconv.Atoi(remaining[1])
	if err != nil {
		return fmt.Errorf("invalid port %q", remaining[1])
	}
	cfg.Port = port

	if len(remaining) > 2 {
		cfg.Command = remaining[2]
		cfg.Args = remaining[3:]
	}
	return nil
}

// promptPassword reads the server password without echo.  Only a real
// terminal can be prompted; piped stdin means the password has to come
// from a flag, the environment, or a profile.
func promptPassword(host string, port int) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password required (use -P, GRCON_PASSWORD, or a profile)")
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", util.FormatAddr(host, port))
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `grcon – game server remote console v%s

Connects to a server's RCON port, authenticates with an MD5 password
digest, and either runs one command or opens an interactive console.

Usage:
  grcon [options] <host> <port>                     Interactive console
  grcon [options] <host> <port> <command> [args...] One-shot command
  grcon --profile prod --config servers.yaml        Connect via profile

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  grcon game.example.com 27020                      Open a console
  grcon game.example.com 27020 ServerInfo           Query server status
  grcon -w 10 game.example.com 27020 Save           Slow command, 10s limit
  grcon -T admin@bastion game-internal 27020        Connect via SSH gateway
  GRCON_PASSWORD=secret grcon game.example.com 27020 PlayerList

Environment:
  GRCON_HOST, GRCON_PORT, GRCON_PASSWORD, GRCON_IPV4, GRCON_TIMEOUT,
  GRCON_GATEWAY, GRCON_SSH_KEY, GRCON_TRANSCRIPT, GRCON_PROFILE
`)
}
