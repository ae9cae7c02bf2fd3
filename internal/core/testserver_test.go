package core

import (
	"bufio"
	"crypto/md5" //nolint:gosec
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"testing"
)

// startRconServer runs a minimal loopback RCON server: handshake, then
// a command loop answering from the replies map (verb → JSON block).
// Unknown verbs get a negative acknowledgement.
func startRconServer(t *testing.T, password string, replies map[string]string) (host string, port int) {
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
			go serveConn(conn, password, replies)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

// startSilentRconServer authenticates every connection and then swallows
// commands without ever replying.  dials counts accepted connections.
func startSilentRconServer(t *testing.T, password string) (host string, port int, dials *atomic.Int32) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	dials = &atomic.Int32{}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			dials.Add(1)
			go func(c net.Conn) {
				defer c.Close()
				if serveAuth(c, password) {
					io.Copy(io.Discard, c) //nolint:errcheck
				}
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, dials
}

// serveAuth performs the server half of the handshake and reports
// whether the received digest matched password.
func serveAuth(conn net.Conn, password string) bool {
	if _, err := conn.Write([]byte("Password: ")); err != nil {
		return false
	}
	want := fmt.Sprintf("%x", md5.Sum([]byte(password))) //nolint:gosec
	got := make([]byte, len(want))
	for read := 0; read < len(got); {
		n, err := conn.Read(got[read:])
		read += n
		if err != nil {
			return false
		}
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

func serveConn(conn net.Conn, password string, replies map[string]string) {
	defer conn.Close()

	if !serveAuth(conn, password) {
		return
	}

	br := bufio.NewReader(conn)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		reply, ok := replies[fields[0]]
		if !ok {
			reply = fmt.Sprintf(`{"Command":%q,"Successful":false}`, fields[0])
		}
		if _, err := conn.Write([]byte(reply)); err != nil {
			return
		}
	}
}
