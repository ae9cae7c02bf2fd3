package config

// profiles.go - named server targets loaded from a YAML file, so
// operators can run "grcon --profile prod ServerInfo" instead of
// repeating host/port/credentials.

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile describes one server target.
type Profile struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`     // discouraged; prefer password_env
	PasswordEnv string `yaml:"password_env"` // name of the env var holding the password
	Timeout     string `yaml:"command_timeout"`
	ForceIPv4   bool   `yaml:"ipv4"`
	Gateway     string `yaml:"gateway"`
	SSHKey      string `yaml:"ssh_key"`
	Transcript  string `yaml:"transcript"`
}

// ProfileFile is the root of the profiles YAML document.
type ProfileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfiles reads and parses a profiles file.
func LoadProfiles(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profiles file: %w", err)
	}
	var f ProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("profiles file %s: %w", path, err)
	}
	return &f, nil
}

// Names returns every profile name, sorted.
func (f *ProfileFile) Names() []string {
	out := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Apply overlays the named profile onto cfg.  Only fields still at
// their zero value are touched, keeping flag and env precedence.
func (f *ProfileFile) Apply(name string, cfg *Config) error {
	p, ok := f.Profiles[name]
	if !ok {
		return fmt.Errorf("profile %q not found (have: %v)", name, f.Names())
	}

	if cfg.Host == "" {
		cfg.Host = p.Host
	}
	if cfg.Port == 0 {
		cfg.Port = p.Port
	}
	if cfg.Password == "" {
		if p.PasswordEnv != "" {
			cfg.Password = os.Getenv(p.PasswordEnv)
		}
		if cfg.Password == "" {
			cfg.Password = p.Password
		}
	}
	if cfg.CommandTimeout == 0 && p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return fmt.Errorf("profile %q: command_timeout: %w", name, err)
		}
		cfg.CommandTimeout = d
	}
	if !cfg.ForceIPv4 {
		cfg.ForceIPv4 = p.ForceIPv4
	}
	if cfg.GatewaySpec == "" {
		cfg.GatewaySpec = p.Gateway
	}
	if cfg.SSHKeyPath == "" {
		cfg.SSHKeyPath = p.SSHKey
	}
	if cfg.TranscriptPath == "" {
		cfg.TranscriptPath = p.Transcript
	}
	return nil
}
