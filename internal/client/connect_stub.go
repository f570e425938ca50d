//go:build nodvr

package client

import (
	"context"

	"sysdvr/internal/transport"
)

// Connect returns a stub handle; this build has no service support.
func Connect(context.Context, transport.Registry) (*Handle, error) {
	return NewStub(), nil
}
