// Package errors provides domain-specific error types for grcon.
//
// These types carry structured context (command verb, parameters, raw
// reply text, underlying cause) that helps callers decide whether to
// reconnect, retry, or give up, and provides better diagnostics than
// plain string wrapping.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrNotConnected signals an operation attempted without a live
	// socket, or a socket that died mid-operation.
	ErrNotConnected = errors.New("not connected")

	// ErrMissingAuthPrompt signals that the server did not open the
	// handshake with the expected password prompt.
	ErrMissingAuthPrompt = errors.New("missing authentication prompt")

	// ErrAuthenticationFailed signals a rejected password digest.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrCommandTimeout signals that the per-command deadline elapsed
	// before a complete reply block was assembled.  It always surfaces
	// wrapped inside a [CommandError].
	ErrCommandTimeout = errors.New("command timed out")
)

// ── Structured error types ───────────────────────────────────────────

// CommandError is the top-level failure for a send call.  It always
// carries the command that was issued; Err is nil when the server
// itself reported the command as unsuccessful.
type CommandError struct {
	Verb   string
	Params []string
	Err    error // underlying cause, nil for a negative acknowledgement
}

func (e *CommandError) Error() string {
	name := e.Verb
	if len(e.Params) > 0 {
		name += " " + strings.Join(e.Params, " ")
	}
	if e.Err == nil {
		return fmt.Sprintf("command %q: server reported failure", name)
	}
	return fmt.Sprintf("command %q: %v", name, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ResponseError signals a reply that could not be decoded into the
// expected shape, or whose self-reported command name did not match
// the command that was sent.  Raw preserves the accumulated text for
// diagnostics.
type ResponseError struct {
	Raw string
	Err error // decode cause, nil for a correlation mismatch
}

func (e *ResponseError) Error() string {
	raw := e.Raw
	if len(raw) > 120 {
		raw = raw[:120] + "..."
	}
	if e.Err == nil {
		return fmt.Sprintf("unexpected rcon response %q", raw)
	}
	return fmt.Sprintf("unexpected rcon response %q: %v", raw, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// HandshakeError wraps a failure during the connect handshake with the
// step and address where it occurred.
type HandshakeError struct {
	Step string // "prompt", "send-digest", "confirm"
	Addr string
	Err  error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake %s %s: %v", e.Step, e.Addr, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// ── Constructors ─────────────────────────────────────────────────────

// WrapCommand wraps err with the command that produced it.  A nil err
// produces a negative-acknowledgement CommandError.
func WrapCommand(verb string, params []string, err error) *CommandError {
	return &CommandError{Verb: verb, Params: params, Err: err}
}

// WrapHandshake wraps a handshake-step failure.
func WrapHandshake(step, addr string, err error) *HandshakeError {
	return &HandshakeError{Step: step, Addr: addr, Err: err}
}

// ── Classification ───────────────────────────────────────────────────

// IsRecoverable reports whether a reconnect is worth attempting after
// err.  Authentication and prompt failures are terminal; dead sockets,
// timeouts, and transient network faults are not.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrMissingAuthPrompt) {
		return false
	}
	if errors.Is(err, ErrNotConnected) || errors.Is(err, ErrCommandTimeout) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }
