// Package rcon implements the client side of a line-oriented,
// password-authenticated remote-console protocol.
//
// The server speaks plain text over a single TCP connection: it opens
// with a literal "Password: " prompt, accepts an MD5 hex digest of the
// password, confirms with "Authenticated=1", and then answers each
// newline-terminated command with a single JSON object whose end is
// marked only by brace balance.
//
// A Session owns at most one live connection at a time and supports
// reconnection: every Connect fully replaces the previous socket.  The
// protocol is strictly half-duplex, so callers must serialize command
// sends on a session; concurrent sends are a caller error.
package rcon

import (
	"context"
	"crypto/md5" //nolint:gosec // digest format is fixed by the wire protocol
	"errors"
	"fmt"
	"net"
	"time"

	rcerr "grcon/internal/errors"
	"grcon/internal/metrics"
	"grcon/internal/transport"
	"grcon/util"
)

const (
	passwordPrompt = "Password: "
	authSuccess    = "Authenticated=1"

	// DefaultCommandTimeout bounds the reply wait of a send when the
	// session config leaves CommandTimeout zero.
	DefaultCommandTimeout = 5 * time.Second

	// teardownGrace bounds any straggling I/O on a socket that is
	// being replaced during reconnect.
	teardownGrace = 2 * time.Second
)

// SessionConfig collects everything needed to build a Session.
type SessionConfig struct {
	Host     string
	Port     int
	Password string

	// CommandTimeout is the per-command reply deadline, measured from
	// just before each read loop starts.
	CommandTimeout time.Duration

	Dialer     transport.Dialer   // nil → plain TCP
	Logger     *util.Logger       // nil → quiet
	Metrics    *metrics.Collector // optional, nil-safe
	Transcript *util.Transcript   // optional, nil-safe
}

// Session is one logical server target.  The password is digested at
// construction and never kept or exposed in plaintext afterwards.
type Session struct {
	host    string
	port    int
	digest  string // lowercase hex MD5 of the plaintext password
	timeout time.Duration

	dialer     transport.Dialer
	logger     *util.Logger
	metrics    *metrics.Collector
	transcript *util.Transcript

	conn net.Conn // nil while disconnected
}

// NewSession builds a Session for host:port.  The plaintext password
// is digested here and discarded.
func NewSession(cfg SessionConfig) *Session {
	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &transport.TCPDialer{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Session{
		host:       cfg.Host,
		port:       cfg.Port,
		digest:     fmt.Sprintf("%x", md5.Sum([]byte(cfg.Password))), //nolint:gosec
		timeout:    timeout,
		dialer:     dialer,
		logger:     logger,
		metrics:    cfg.Metrics,
		transcript: cfg.Transcript,
	}
}

// Addr returns the target as "host:port".
func (s *Session) Addr() string {
	return util.FormatAddr(s.host, s.port)
}

// Connected reports whether a live socket exists.
func (s *Session) Connected() bool {
	return s.conn != nil
}

// Connect replaces any prior socket with a freshly dialed and
// authenticated connection.  Handshake failures leave the session
// disconnected; there is no retry at this layer.
func (s *Session) Connect(ctx context.Context) error {
	s.dropConn()

	addr := s.Addr()
	s.logger.Verbose("connecting to %s", addr)

	conn, err := s.dialer.Dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}

	if err := s.handshake(ctx, conn); err != nil {
		conn.Close() //nolint:errcheck
		return err
	}

	s.conn = conn
	s.metrics.ConnectionOpened()
	s.logger.Verbose("authenticated to %s", addr)
	return nil
}

// Close tears down the session's socket, if any.  Always nil.
func (s *Session) Close() error {
	s.dropConn()
	return nil
}

// handshake performs the fixed prompt → digest → confirmation
// exchange on a fresh connection.
func (s *Session) handshake(ctx context.Context, conn net.Conn) error {
	addr := s.Addr()

	// 1. Exactly the prompt, nothing less.
	prompt := make([]byte, len(passwordPrompt))
	if err := readFull(ctx, conn, prompt); err != nil {
		if isContextErr(err) {
			return rcerr.WrapHandshake("prompt", addr, err)
		}
		return rcerr.WrapHandshake("prompt", addr, rcerr.ErrMissingAuthPrompt)
	}
	if string(prompt) != passwordPrompt {
		return rcerr.WrapHandshake("prompt", addr, rcerr.ErrMissingAuthPrompt)
	}

	// 2. The digest, no newline.
	if err := writeConn(ctx, conn, []byte(s.digest)); err != nil {
		return rcerr.WrapHandshake("send-digest", addr, err)
	}
	s.metrics.AddBytesOut(len(s.digest))

	// 3. One confirmation line.  Anything other than the exact success
	// string is a rejection; the protocol defines no failure line.
	line, err := readLine(ctx, conn)
	if err != nil {
		if isContextErr(err) {
			return rcerr.WrapHandshake("confirm", addr, err)
		}
		return rcerr.WrapHandshake("confirm", addr, rcerr.ErrAuthenticationFailed)
	}
	if line != authSuccess {
		return rcerr.WrapHandshake("confirm", addr, rcerr.ErrAuthenticationFailed)
	}
	return nil
}

// dropConn tears down the current socket.  Teardown errors are logged
// and never propagated: a failing close of an already broken socket
// must not block establishing a new one.
func (s *Session) dropConn() {
	if s.conn == nil {
		return
	}
	// Bound any straggling I/O on the old socket.
	s.conn.SetDeadline(time.Now().Add(teardownGrace)) //nolint:errcheck
	if err := s.conn.Close(); err != nil {
		s.logger.Warn("closing previous connection to %s: %v", s.Addr(), err)
	}
	s.conn = nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
