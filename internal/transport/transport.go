// Package transport provides abstractions for reaching the RCON port.
// Transports handle the "how" of connection establishment — plain TCP
// or TCP through an SSH gateway — independent of the protocol spoken
// over the connection (which is the rcon package's job).
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.  Implementations include
// a plain TCP dialer and an SSH-gateway dialer that routes the RCON
// connection through an encrypted bastion host.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
