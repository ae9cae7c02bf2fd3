package core

import (
	"grcon/config"
	"grcon/internal/metrics"
	"grcon/internal/rcon"
	"grcon/internal/retry"
	"grcon/internal/transport"
	"grcon/util"
)

// Build constructs the appropriate Mode from the given configuration:
// ExecMode when a one-shot command is configured, otherwise the
// interactive console.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	dialer := buildDialer(cfg, logger)
	collector := metrics.New()

	var transcript *util.Transcript
	if cfg.TranscriptPath != "" {
		transcript = util.NewTranscript(cfg.TranscriptPath,
			config.DefaultTranscriptMaxSizeMB, config.DefaultTranscriptBackups)
		logger.Verbose("transcript: %s", cfg.TranscriptPath)
	}

	sess := rcon.NewSession(rcon.SessionConfig{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Password:       cfg.Password,
		CommandTimeout: cfg.CommandTimeout,
		Dialer:         dialer,
		Logger:         logger,
		Metrics:        collector,
		Transcript:     transcript,
	})

	if cfg.Command != "" {
		return &ExecMode{
			Session:        sess,
			Dialer:         dialer,
			Verb:           cfg.Command,
			Args:           cfg.Args,
			ConnectTimeout: cfg.ConnectTimeout,
			Logger:         logger,
			Metrics:        collector,
			Transcript:     transcript,
		}, nil
	}

	return &InteractiveMode{
		Session:        sess,
		Dialer:         dialer,
		ConnectTimeout: cfg.ConnectTimeout,
		Backoff:        retry.DefaultBackoff(),
		Logger:         logger,
		Metrics:        collector,
		Transcript:     transcript,
	}, nil
}

// buildDialer creates the right transport for the target: plain TCP,
// or TCP forwarded through an SSH gateway.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.GatewayEnabled {
		return transport.NewSSHDialer(&transport.GatewayConfig{
			User:          cfg.GatewayUser,
			Host:          cfg.GatewayHost,
			Port:          cfg.GatewayPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.ConnectTimeout,
		}, logger)
	}
	return &transport.TCPDialer{
		Timeout:   cfg.ConnectTimeout,
		ForceIPv4: cfg.ForceIPv4,
	}
}
