package rcon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	rcerr "grcon/internal/errors"
	"grcon/util"
)

// Send issues cmd on the session and decodes the JSON reply block into
// a freshly allocated P.  Every failure — dead socket, write error,
// elapsed reply deadline, undecodable or mismatched reply, or a reply
// whose own success flag is false — surfaces as a *errors.CommandError
// carrying the command.
//
// The write and the read loop are each bounded by the session's
// command timeout; the reply deadline runs from just before the read
// loop, so a slow write never eats into the reply wait.  An elapsed
// deadline on either step wraps ErrCommandTimeout.  Callers must
// serialize Send calls per session (half-duplex protocol, one command
// in flight at a time).
func Send[T any, P ReplyPtr[T]](ctx context.Context, s *Session, cmd Command) (P, error) {
	fail := func(err error) (P, error) {
		s.metrics.NoteError(err.Error())
		return nil, rcerr.WrapCommand(cmd.Verb, cmd.Params, err)
	}

	if !s.Connected() {
		return fail(rcerr.ErrNotConnected)
	}

	line := cmd.Line()
	wctx, wcancel := context.WithTimeout(ctx, s.timeout)
	err := writeConn(wctx, s.conn, []byte(line))
	wcancel()
	if err != nil {
		return fail(s.asTimeout(ctx, err))
	}
	s.metrics.CommandSent()
	s.metrics.AddBytesOut(len(line))
	s.transcript.Sent(line)
	s.logger.Wire(">>", line)

	// The reply deadline runs from here, not from the write.
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.readBlock(rctx)
	if err != nil {
		return fail(s.asTimeout(ctx, err))
	}
	s.transcript.Received(raw)
	s.logger.Wire("<<", raw)

	reply := P(new(T))
	if err := json.Unmarshal([]byte(raw), reply); err != nil {
		return fail(&rcerr.ResponseError{Raw: raw, Err: err})
	}
	if !strings.EqualFold(reply.CommandName(), cmd.Verb) {
		// A mismatched name means the reply belongs to some prior,
		// abandoned command on a reused connection.
		return fail(&rcerr.ResponseError{Raw: raw, Err: fmt.Errorf(
			"reply reports command %q, sent %q", reply.CommandName(), cmd.Verb)})
	}
	reply.attachRaw(raw)

	s.metrics.ReplyReceived(reply.OK())
	if !reply.OK() {
		// Negative acknowledgements are errors, not values.
		s.metrics.NoteError(cmd.Verb + ": server reported failure")
		return nil, rcerr.WrapCommand(cmd.Verb, cmd.Params, nil)
	}
	return reply, nil
}

// SendRaw issues cmd and returns the raw undecoded text of a
// successful reply.
func SendRaw(ctx context.Context, s *Session, cmd Command) (string, error) {
	reply, err := Send[Header](ctx, s, cmd)
	if err != nil {
		return "", err
	}
	return reply.Raw, nil
}

// asTimeout rewrites an elapsed per-command deadline into
// ErrCommandTimeout.  Cancellation coming from the caller's own
// context passes through untouched.
func (s *Session) asTimeout(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		s.metrics.TimeoutHit()
		return fmt.Errorf("%w after %s", rcerr.ErrCommandTimeout, s.timeout)
	}
	return err
}

// readBlock accumulates chunks from the socket until the text forms
// one complete brace-balanced JSON object, the context fires, or the
// socket dies.  The accumulation buffer is scoped to one call.
func (s *Session) readBlock(ctx context.Context) (string, error) {
	buf := util.GetChunk()
	defer util.PutChunk(buf)

	var acc []byte
	for {
		n, err := readConn(ctx, s.conn, *buf)
		if n > 0 {
			acc = append(acc, (*buf)[:n]...)
			s.metrics.AddBytesIn(n)
			if CompleteBlock(string(acc)) {
				return string(acc), nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				// The socket reports disconnected; drop it so
				// Connected() tells the truth.
				s.dropConn()
				err = rcerr.ErrNotConnected
			}
			return "", err
		}
		// A zero-length read with no error and a live context is
		// spurious; retry rather than treating it as a signal.
	}
}
