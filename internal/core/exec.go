package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"grcon/internal/commands"
	"grcon/internal/metrics"
	"grcon/internal/rcon"
	"grcon/internal/transport"
	"grcon/util"
)

// ExecMode connects, issues one command, prints the rendered reply to
// stdout, and disconnects — the scripting mode.
type ExecMode struct {
	Session        *rcon.Session
	Dialer         transport.Dialer
	Verb           string
	Args           []string
	ConnectTimeout time.Duration
	Logger         *util.Logger
	Metrics        *metrics.Collector
	Transcript     *util.Transcript

	// Stdout defaults to os.Stdout when nil.  Override in tests.
	Stdout io.Writer
}

func (m *ExecMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run performs connect → send → print.  Any failure is returned as-is
// so the CLI can map it to an exit status.
func (m *ExecMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()
	defer m.Session.Close()
	defer m.Transcript.Close() //nolint:errcheck
	defer func() {
		m.Logger.Debug("session stats: %s", m.Metrics.Snapshot())
	}()

	cctx, cancel := context.WithTimeout(ctx, m.ConnectTimeout)
	defer cancel()
	if err := m.Session.Connect(cctx); err != nil {
		return err
	}

	out, err := commands.Dispatch(ctx, m.Session, m.Verb, m.Args)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.stdout(), out)
	return nil
}
