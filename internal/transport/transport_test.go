package transport

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPDialer_Dial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	d := &TCPDialer{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()

	if err := d.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestTCPDialer_ForceIPv4(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no IPv4 loopback: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	d := &TCPDialer{Timeout: 2 * time.Second, ForceIPv4: true}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial (tcp4): %v", err)
	}
	defer conn.Close()

	if _, ok := conn.RemoteAddr().(*net.TCPAddr); !ok {
		t.Errorf("unexpected addr type %T", conn.RemoteAddr())
	}
}

func TestTCPDialer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &TCPDialer{Timeout: time.Second}
	// 192.0.2.0/24 is TEST-NET, nothing should answer.
	_, err := d.Dial(ctx, "tcp", "192.0.2.1:7777")
	if err == nil {
		t.Fatal("expected error from cancelled dial")
	}
}
