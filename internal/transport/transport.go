// Package transport is the host service registry: it publishes a named
// service endpoint on the service side and resolves the name to a
// connection on the client side.  On Unix each service is a socket in a
// directory; on Windows it is a named pipe.
package transport

import (
	"context"
	"net"
)

// Registry maps well-known service names to connection-oriented
// endpoints.
type Registry interface {
	// Register publishes name and returns the listener that receives its
	// connections.  Closing the listener unregisters the name.
	Register(name string) (net.Listener, error)

	// Dial connects to a registered service.  It returns an error
	// matching [dvrerr.ErrNotFound] when nothing is registered under
	// name.
	Dial(ctx context.Context, name string) (net.Conn, error)
}
