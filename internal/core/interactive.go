package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"grcon/internal/commands"
	rcerr "grcon/internal/errors"
	"grcon/internal/metrics"
	"grcon/internal/rcon"
	"grcon/internal/retry"
	"grcon/internal/transport"
	"grcon/util"
)

// InteractiveMode is the operator console: a read-eval loop over stdin
// that sends each line as a command and reconnects with backoff when
// the session drops.  Authentication failures are terminal.
type InteractiveMode struct {
	Session        *rcon.Session
	Dialer         transport.Dialer
	ConnectTimeout time.Duration
	Backoff        *retry.Backoff
	Logger         *util.Logger
	Metrics        *metrics.Collector
	Transcript     *util.Transcript

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *InteractiveMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *InteractiveMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run connects and serves the console until stdin ends, /quit, or the
// context is cancelled.
func (m *InteractiveMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()
	defer m.Session.Close()
	defer m.Transcript.Close() //nolint:errcheck
	defer func() {
		m.Logger.Debug("session stats: %s", m.Metrics.Snapshot())
	}()

	if err := m.connect(ctx); err != nil {
		return err
	}
	fmt.Fprintf(m.stdout(), "connected to %s - /help lists console commands\n", m.Session.Addr())

	scanner := bufio.NewScanner(m.stdin())
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := m.console(ctx, line)
			if quit {
				return err
			}
			continue
		}

		fields := strings.Fields(line)
		out, err := commands.Dispatch(ctx, m.Session, fields[0], fields[1:])
		if err != nil {
			m.Logger.Error("%v", err)
			if m.needsReconnect(err) {
				if rerr := m.reconnect(ctx); rerr != nil {
					return rerr
				}
			}
			continue
		}
		fmt.Fprintln(m.stdout(), out)
	}
	return scanner.Err()
}

// console handles the local /-prefixed commands.  It reports whether
// the loop should stop.
func (m *InteractiveMode) console(ctx context.Context, line string) (quit bool, err error) {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/quit", "/exit":
		return true, nil
	case "/stats":
		fmt.Fprintln(m.stdout(), m.Metrics.Snapshot())
	case "/reconnect":
		if err := m.reconnect(ctx); err != nil {
			return true, err
		}
	case "/help":
		fmt.Fprintln(m.stdout(), "server commands:", strings.Join(commands.Verbs(), ", "))
		fmt.Fprintln(m.stdout(), "console commands: /help /stats /reconnect /quit")
		fmt.Fprintln(m.stdout(), "anything else is sent to the server verbatim")
	default:
		fmt.Fprintf(m.stdout(), "unknown console command %q - try /help\n", line)
	}
	return false, nil
}

// needsReconnect reports whether the session needs a fresh socket
// after err.  A dead socket is the obvious case; a command timeout
// also qualifies — the socket still reads as connected, but a late
// reply for the abandoned command would desynchronize every command
// after it.
func (m *InteractiveMode) needsReconnect(err error) bool {
	if !rcerr.IsRecoverable(err) {
		return false
	}
	return !m.Session.Connected() || rcerr.Is(err, rcerr.ErrCommandTimeout)
}

func (m *InteractiveMode) connect(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, m.ConnectTimeout)
	defer cancel()
	return m.Session.Connect(cctx)
}

// reconnect re-establishes the session under the backoff policy.
// A rejected credential will not get better by retrying.
func (m *InteractiveMode) reconnect(ctx context.Context) error {
	return m.Backoff.Do(ctx, func(attempt int) error {
		m.Logger.Info("reconnecting to %s (attempt %d)", m.Session.Addr(), attempt)
		err := m.connect(ctx)
		if err != nil && !rcerr.IsRecoverable(err) {
			return retry.Permanent(err)
		}
		return err
	})
}
