// Package session represents one stream client of a network transport,
// binding the accepted connection to the stream it receives.
package session

import (
	"net"
	"time"

	"sysdvr/util"
)

// Session is the runtime context for a single accepted stream client.
// Capabilities operate on sessions rather than raw connections.
type Session struct {
	Conn    net.Conn
	Stream  string // stream name used in logs, e.g. "video"
	Logger  *util.Logger
	Started time.Time
}

// New creates a Session for conn.  The logger is tagged with stream.
func New(conn net.Conn, stream string, logger *util.Logger) *Session {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Session{
		Conn:    conn,
		Stream:  stream,
		Logger:  logger.Named(stream),
		Started: time.Now(),
	}
}

// Peer returns the remote address of the client.
func (s *Session) Peer() string {
	if a := s.Conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return "unknown"
}

// Elapsed returns how long the session has been open.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.Started)
}
