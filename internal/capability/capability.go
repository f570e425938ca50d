// Package capability defines what a network transport does with an
// accepted stream client.  Each Capability operates on a Session rather
// than a raw net.Conn, which keeps it testable and decoupled from the
// listener.
package capability

import (
	"context"

	"sysdvr/internal/session"
)

// Capability serves a single client.  Handle blocks until the client
// goes away or the context is cancelled.
type Capability interface {
	Handle(ctx context.Context, sess *session.Session) error
}
