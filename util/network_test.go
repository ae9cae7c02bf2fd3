package util

import (
	"net"
	"testing"
)

func TestFormatAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"game.example.com", 27020, "game.example.com:27020"},
		{"127.0.0.1", 7777, "127.0.0.1:7777"},
		{"::1", 27020, "[::1]:27020"},
	}
	for _, tt := range tests {
		if got := FormatAddr(tt.host, tt.port); got != tt.want {
			t.Errorf("FormatAddr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestValidPort(t *testing.T) {
	for _, p := range []int{1, 27020, 65535} {
		if !ValidPort(p) {
			t.Errorf("ValidPort(%d) = false, want true", p)
		}
	}
	for _, p := range []int{0, -1, 65536} {
		if ValidPort(p) {
			t.Errorf("ValidPort(%d) = true, want false", p)
		}
	}
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	if !ValidPort(port) {
		t.Errorf("port %d out of range", port)
	}

	// The port should be bindable right after.
	l, err := net.Listen("tcp", FormatAddr("127.0.0.1", port))
	if err != nil {
		t.Fatalf("listen on reported free port: %v", err)
	}
	l.Close()
}
