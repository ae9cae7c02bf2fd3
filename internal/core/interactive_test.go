package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"grcon/internal/metrics"
	"grcon/internal/rcon"
	"grcon/internal/retry"
	"grcon/internal/transport"
	"grcon/util"
)

func testInteractiveMode(host string, port int, password, script string, timeout time.Duration) (*InteractiveMode, *bytes.Buffer) {
	out := &bytes.Buffer{}
	dialer := &transport.TCPDialer{Timeout: 2 * time.Second}
	collector := metrics.New()
	sess := rcon.NewSession(rcon.SessionConfig{
		Host:           host,
		Port:           port,
		Password:       password,
		CommandTimeout: timeout,
		Dialer:         dialer,
		Metrics:        collector,
	})
	return &InteractiveMode{
		Session:        sess,
		Dialer:         dialer,
		ConnectTimeout: 2 * time.Second,
		Backoff: &retry.Backoff{
			InitialDelay: 10 * time.Millisecond,
			MaxDelay:     50 * time.Millisecond,
			Multiplier:   2,
			MaxAttempts:  3,
		},
		Logger:  util.NewLogger(0),
		Metrics: collector,
		Stdin:   strings.NewReader(script),
		Stdout:  out,
	}, out
}

func TestInteractiveMode_CommandsAndQuit(t *testing.T) {
	host, port := startRconServer(t, "hunter2", map[string]string{
		"ServerInfo": serverInfoJSON,
	})

	mode, out := testInteractiveMode(host, port, "hunter2", "ServerInfo\n/quit\n", time.Second)
	if err := mode.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "connected to") {
		t.Errorf("missing banner:\n%s", got)
	}
	if !strings.Contains(got, "server:  Alpha") {
		t.Errorf("missing rendered reply:\n%s", got)
	}
}

func TestInteractiveMode_EOFEndsLoop(t *testing.T) {
	host, port := startRconServer(t, "hunter2", nil)

	mode, _ := testInteractiveMode(host, port, "hunter2", "", time.Second)
	if err := mode.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestInteractiveMode_RawFallback(t *testing.T) {
	raw := `{"Command":"Weather","Successful":true,"State":"rain"}`
	host, port := startRconServer(t, "hunter2", map[string]string{"Weather": raw})

	mode, out := testInteractiveMode(host, port, "hunter2", "Weather rain\n/quit\n", time.Second)
	if err := mode.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), raw) {
		t.Errorf("raw reply not echoed:\n%s", out.String())
	}
}

func TestInteractiveMode_ConsoleCommands(t *testing.T) {
	host, port := startRconServer(t, "hunter2", nil)

	script := "/help\n/stats\n/bogus\n/quit\nnever-sent\n"
	mode, out := testInteractiveMode(host, port, "hunter2", script, time.Second)
	if err := mode.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "ServerInfo") || !strings.Contains(got, "PlayerList") {
		t.Errorf("/help did not list verbs:\n%s", got)
	}
	if !strings.Contains(got, `"commands_sent"`) {
		t.Errorf("/stats did not print a snapshot:\n%s", got)
	}
	if !strings.Contains(got, "unknown console command") {
		t.Errorf("/bogus not reported:\n%s", got)
	}
	if strings.Contains(got, "never-sent") {
		t.Errorf("input after /quit was processed:\n%s", got)
	}
}

func TestInteractiveMode_AuthFailureIsTerminal(t *testing.T) {
	host, port := startRconServer(t, "right", nil)

	mode, _ := testInteractiveMode(host, port, "wrong", "ServerInfo\n", time.Second)
	if err := mode.Run(context.Background()); err == nil {
		t.Fatal("Run should fail when authentication is rejected")
	}
}

func TestInteractiveMode_ReconnectsAfterTimeout(t *testing.T) {
	host, port, dials := startSilentRconServer(t, "hunter2")

	mode, _ := testInteractiveMode(host, port, "hunter2", "Save\n/quit\n", 200*time.Millisecond)
	if err := mode.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The timed-out socket must be replaced even though it still looked
	// connected: a late reply on it would desynchronize the stream.
	if got := dials.Load(); got < 2 {
		t.Errorf("server saw %d connections, want a reconnect after the timeout", got)
	}
	if snap := mode.Metrics.Snapshot(); snap.Connects < 2 || snap.Timeouts == 0 {
		t.Errorf("metrics = %+v, want a recorded timeout and a second connect", snap)
	}
}
