package rcon

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	rcerr "grcon/internal/errors"
)

// infoReply is a minimal typed reply shape for tests.
type infoReply struct {
	Header
	ServerName string `json:"ServerName"`
}

// connectedSession dials srv and fails the test on handshake trouble.
func connectedSession(t *testing.T, srv *fakeServer) *Session {
	t.Helper()
	s := newTestSession(srv, "hunter2")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// replyAfterCommand serves the handshake, asserts the received command
// line, then writes each fragment with a short gap.
func replyAfterCommand(t *testing.T, wantLine string, fragments ...string) func(net.Conn) {
	return func(conn net.Conn) {
		defer conn.Close()
		if !serveHandshake(conn, "hunter2") {
			return
		}
		br := bufio.NewReader(conn)
		line, err := readCommandLine(br)
		if err != nil {
			return
		}
		if line != wantLine {
			t.Errorf("server received %q, want %q", line, wantLine)
		}
		for i, frag := range fragments {
			if i > 0 {
				time.Sleep(30 * time.Millisecond)
			}
			if _, err := conn.Write([]byte(frag)); err != nil {
				return
			}
		}
		// Linger so the client finishes reading before close.
		time.Sleep(200 * time.Millisecond)
	}
}

func TestSend_FragmentedReply(t *testing.T) {
	srv := startServer(t, replyAfterCommand(t, "ServerInfo",
		`{"Command":"ServerInfo","Succe`,
		`ssful":true,"ServerName":"Alpha"}`))
	s := connectedSession(t, srv)

	reply, err := Send[infoReply](context.Background(), s, NewCommand("ServerInfo"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.ServerName != "Alpha" {
		t.Errorf("ServerName = %q, want Alpha", reply.ServerName)
	}
	want := `{"Command":"ServerInfo","Successful":true,"ServerName":"Alpha"}`
	if reply.Raw != want {
		t.Errorf("Raw = %q, want %q", reply.Raw, want)
	}
}

func TestSend_WireFormatWithParams(t *testing.T) {
	srv := startServer(t, replyAfterCommand(t, "Kick PlayerA cheating",
		`{"Command":"Kick","Successful":true}`))
	s := connectedSession(t, srv)

	if _, err := Send[Header](context.Background(), s,
		NewCommand("Kick", "PlayerA", "cheating")); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSend_CaseInsensitiveCorrelation(t *testing.T) {
	srv := startServer(t, replyAfterCommand(t, "ServerInfo",
		`{"Command":"serverinfo","Successful":true}`))
	s := connectedSession(t, srv)

	if _, err := Send[Header](context.Background(), s, NewCommand("ServerInfo")); err != nil {
		t.Fatalf("differently-cased command name rejected: %v", err)
	}
}

func TestSend_MismatchedCommandName(t *testing.T) {
	srv := startServer(t, replyAfterCommand(t, "ServerInfo",
		`{"Command":"PlayerList","Successful":true}`))
	s := connectedSession(t, srv)

	_, err := Send[Header](context.Background(), s, NewCommand("ServerInfo"))
	var respErr *rcerr.ResponseError
	if !rcerr.As(err, &respErr) {
		t.Fatalf("err = %v, want ResponseError", err)
	}
	if respErr.Raw == "" {
		t.Error("ResponseError lost the raw text")
	}
}

func TestSend_MalformedJSON(t *testing.T) {
	srv := startServer(t, replyAfterCommand(t, "ServerInfo",
		`{Command:ServerInfo}`))
	s := connectedSession(t, srv)

	_, err := Send[Header](context.Background(), s, NewCommand("ServerInfo"))
	var respErr *rcerr.ResponseError
	if !rcerr.As(err, &respErr) {
		t.Fatalf("err = %v, want ResponseError", err)
	}
	if respErr.Err == nil {
		t.Error("ResponseError missing the decode cause")
	}
}

func TestSend_NegativeAcknowledgement(t *testing.T) {
	srv := startServer(t, replyAfterCommand(t, "Save",
		`{"Command":"Save","Successful":false}`))
	s := connectedSession(t, srv)

	_, err := Send[Header](context.Background(), s, NewCommand("Save"))
	var cmdErr *rcerr.CommandError
	if !rcerr.As(err, &cmdErr) {
		t.Fatalf("err = %v, want CommandError", err)
	}
	if cmdErr.Err != nil {
		t.Errorf("negative ack should carry no cause, got %v", cmdErr.Err)
	}
}

func TestSend_Timeout(t *testing.T) {
	srv := startServer(t, func(conn net.Conn) {
		defer conn.Close()
		if !serveHandshake(conn, "hunter2") {
			return
		}
		// Swallow the command, never reply.
		buf := make([]byte, 128)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	})
	s := connectedSession(t, srv)

	start := time.Now()
	_, err := Send[Header](context.Background(), s, NewCommand("ServerInfo"))
	elapsed := time.Since(start)

	var cmdErr *rcerr.CommandError
	if !rcerr.As(err, &cmdErr) {
		t.Fatalf("err = %v, want CommandError", err)
	}
	if !rcerr.Is(err, rcerr.ErrCommandTimeout) {
		t.Fatalf("err = %v, want wrapped ErrCommandTimeout", err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("timeout took %s, deadline not honored", elapsed)
	}
}

func TestSend_StalledWriteTimesOut(t *testing.T) {
	srv := startServer(t, func(conn net.Conn) {
		defer conn.Close()
		if !serveHandshake(conn, "hunter2") {
			return
		}
		// Never read the command, so the client's send buffer fills.
		time.Sleep(2 * time.Second)
	})
	s := connectedSession(t, srv)

	// Large enough to overrun the socket buffers and block the write.
	big := strings.Repeat("a", 16<<20)

	start := time.Now()
	_, err := Send[Header](context.Background(), s, NewCommand("Announce", big))
	elapsed := time.Since(start)

	if !rcerr.Is(err, rcerr.ErrCommandTimeout) {
		t.Fatalf("err = %v, want wrapped ErrCommandTimeout", err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("stalled write took %s, deadline not honored", elapsed)
	}
}

func TestSend_NotConnected(t *testing.T) {
	s := NewSession(SessionConfig{Host: "127.0.0.1", Port: 1, Password: "x"})

	_, err := Send[Header](context.Background(), s, NewCommand("ServerInfo"))
	if !rcerr.Is(err, rcerr.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	var cmdErr *rcerr.CommandError
	if !rcerr.As(err, &cmdErr) {
		t.Fatalf("err = %v, want CommandError wrapper", err)
	}
}

func TestSend_ServerDisconnects(t *testing.T) {
	srv := startServer(t, func(conn net.Conn) {
		if !serveHandshake(conn, "hunter2") {
			conn.Close()
			return
		}
		br := bufio.NewReader(conn)
		readCommandLine(br) //nolint:errcheck
		conn.Close()
	})
	s := connectedSession(t, srv)

	_, err := Send[Header](context.Background(), s, NewCommand("ServerInfo"))
	if !rcerr.Is(err, rcerr.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	if s.Connected() {
		t.Error("session still reports connected after remote close")
	}
}

func TestSendRaw(t *testing.T) {
	raw := `{"Command":"ServerInfo","Successful":true,"ServerName":"Alpha"}`
	srv := startServer(t, replyAfterCommand(t, "ServerInfo", raw))
	s := connectedSession(t, srv)

	got, err := SendRaw(context.Background(), s, NewCommand("ServerInfo"))
	if err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	if got != raw {
		t.Errorf("SendRaw = %q, want %q", got, raw)
	}
}
