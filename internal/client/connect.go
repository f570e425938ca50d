//go:build !nodvr

package client

import (
	"context"

	"sysdvr/internal/transport"
)

// Connect opens a handle to the running service.
func Connect(ctx context.Context, reg transport.Registry) (*Handle, error) {
	return Dial(ctx, reg)
}
