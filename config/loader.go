package config

// loader.go - configuration loading from dotenv files and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags and positional arguments  (cmd/root.go)
//   2. Environment variables, including a loaded .env file  (this file)
//   3. Profile file  (profiles.go)
//   4. Defaults  (defaults.go)

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFile overlays a dotenv file into the process environment.
// Variables already present in the environment always win (godotenv
// never overrides).  With an empty path the default ".env" is loaded
// only when it exists; an explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays GRCON_* environment variables onto cfg.  Only
// fields still at their zero value are touched, so CLI flags and
// positional arguments always win.
//
// Boolean variables accept "1", "true", "yes" (case-insensitive);
// GRCON_TIMEOUT is in seconds.
func ApplyEnv(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = os.Getenv("GRCON_HOST")
	}
	if cfg.Port == 0 {
		cfg.Port = envInt("GRCON_PORT")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("GRCON_PASSWORD")
	}
	if !cfg.ForceIPv4 && envBool("GRCON_IPV4") {
		cfg.ForceIPv4 = true
	}
	if cfg.CommandTimeout == 0 {
		if v := envInt("GRCON_TIMEOUT"); v > 0 {
			cfg.CommandTimeout = time.Duration(v) * time.Second
		}
	}
	if cfg.GatewaySpec == "" {
		cfg.GatewaySpec = os.Getenv("GRCON_GATEWAY")
	}
	if cfg.SSHKeyPath == "" {
		cfg.SSHKeyPath = os.Getenv("GRCON_SSH_KEY")
	}
	if cfg.TranscriptPath == "" {
		cfg.TranscriptPath = os.Getenv("GRCON_TRANSCRIPT")
	}
	if cfg.Profile == "" {
		cfg.Profile = os.Getenv("GRCON_PROFILE")
	}
}

func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
