package rcon

import (
	"bufio"
	"crypto/md5" //nolint:gosec
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// fakeServer accepts loopback connections and hands each one to the
// configured handler on its own goroutine.
type fakeServer struct {
	ln   net.Listener
	host string
	port int
}

func startServer(t *testing.T, handler func(conn net.Conn)) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handler(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return &fakeServer{ln: ln, host: "127.0.0.1", port: addr.Port}
}

// serveHandshake performs the server half of the handshake and reports
// whether the received digest matches password.
func serveHandshake(conn net.Conn, password string) bool {
	if _, err := conn.Write([]byte("Password: ")); err != nil {
		return false
	}
	want := fmt.Sprintf("%x", md5.Sum([]byte(password))) //nolint:gosec
	got := make([]byte, len(want))
	if _, err := readN(conn, got); err != nil {
		return false
	}
	if string(got) != want {
		conn.Write([]byte("Authenticated=0\n")) //nolint:errcheck
		return false
	}
	if _, err := conn.Write([]byte("Authenticated=1\n")); err != nil {
		return false
	}
	return true
}

func readN(conn net.Conn, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		n, err := conn.Read(buf[read:])
		read += n
		if err != nil {
			return read, err
		}
	}
	return read, nil
}

// readCommandLine reads one newline-terminated command line.  Handlers
// that read more than once must share a single reader.
func readCommandLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// newTestSession builds a session against srv with a short command
// timeout suitable for tests.
func newTestSession(srv *fakeServer, password string) *Session {
	return NewSession(SessionConfig{
		Host:           srv.host,
		Port:           srv.port,
		Password:       password,
		CommandTimeout: 500 * time.Millisecond,
	})
}
