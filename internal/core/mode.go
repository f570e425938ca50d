// Package core is the transport layer of the service.  It composes the
// listener bootstrap and stream capabilities into the concrete transport
// modes and switches between them when the service mode changes.
//
// Architecture layers (bottom → top):
//
//	listener  →  capability  →  session  →  core  →  service  →  cmd (CLI)
package core

import (
	"context"

	"sysdvr/util"
)

// Mode is a running transport.  Run owns the transport's sockets from
// start to teardown and returns once ctx is cancelled.
type Mode interface {
	Run(ctx context.Context) error
}

// IdleMode holds a mode that needs no socket, such as USB whose gadget
// endpoints are managed outside this process.
type IdleMode struct {
	Name   string
	Logger *util.Logger
}

// Run blocks until ctx ends.
func (m *IdleMode) Run(ctx context.Context) error {
	if m.Logger != nil {
		m.Logger.Verbose("%s: no sockets to manage", m.Name)
	}
	<-ctx.Done()
	return nil
}
