package transport

import (
	"context"
	"net"
	"time"
)

// TCPDialer establishes plain TCP connections, optionally restricted
// to IPv4 (some game servers only bind their RCON port on IPv4).
type TCPDialer struct {
	Timeout   time.Duration
	ForceIPv4 bool
}

// Dial connects to address over TCP.  With ForceIPv4 set, a generic
// "tcp" network is narrowed to "tcp4" before dialing.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if d.ForceIPv4 && network == "tcp" {
		network = "tcp4"
	}
	dialer := net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
