package rcon

import (
	"context"
	"errors"
	"net"
	"os"
	"time"
)

// aLongTimeAgo is a deadline in the distant past, used to force a
// blocked Read or Write to return immediately when the context fires
// before its deadline.
var aLongTimeAgo = time.Unix(1, 0)

// maxLineLen bounds the handshake confirmation line.
const maxLineLen = 256

// readConn performs one Read on conn honoring ctx for both deadline
// and early cancellation.  A fired deadline surfaces as the context's
// error, not as os.ErrDeadlineExceeded.
func readConn(ctx context.Context, conn net.Conn, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	conn.SetReadDeadline(deadline) //nolint:errcheck
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(aLongTimeAgo) //nolint:errcheck
	})
	defer stop()

	n, err := conn.Read(buf)
	return n, mapDeadline(ctx, err)
}

// writeConn writes all of b to conn honoring ctx.
func writeConn(ctx context.Context, conn net.Conn, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	conn.SetWriteDeadline(deadline) //nolint:errcheck
	stop := context.AfterFunc(ctx, func() {
		conn.SetWriteDeadline(aLongTimeAgo) //nolint:errcheck
	})
	defer stop()

	_, err := conn.Write(b)
	return mapDeadline(ctx, err)
}

// readFull fills buf completely or reports the first error.
func readFull(ctx context.Context, conn net.Conn, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := readConn(ctx, conn, buf[read:])
		read += n
		if err != nil {
			return err
		}
	}
	return nil
}

// readLine reads up to and including a newline and returns the line
// with the trailing CR/LF stripped.
func readLine(ctx context.Context, conn net.Conn) (string, error) {
	var line []byte
	one := make([]byte, 1)
	for len(line) < maxLineLen {
		n, err := readConn(ctx, conn, one)
		if n > 0 {
			if one[0] == '\n' {
				return string(trimCR(line)), nil
			}
			line = append(line, one[0])
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("line too long")
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

// mapDeadline translates a socket deadline error back into the context
// error that caused it.
func mapDeadline(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, os.ErrDeadlineExceeded) {
		return err
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return context.DeadlineExceeded
}
