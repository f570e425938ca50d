//go:build windows

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/Microsoft/go-winio"

	dvrerr "sysdvr/internal/errors"
)

// pipeSDDL grants full access to LocalSystem and Administrators only.
const pipeSDDL = "D:P(A;;GA;;;SY)(A;;GA;;;BA)"

// PipeRegistry registers services as named pipes \\.\pipe\<name>.
type PipeRegistry struct {
	// SecurityDescriptor overrides the default SDDL.
	SecurityDescriptor string
}

// DefaultRegistry returns the platform registry.
func DefaultRegistry() Registry {
	return &PipeRegistry{}
}

// NewRegistry returns the pipe registry.  Pipes live in a single
// namespace, so dir is ignored.
func NewRegistry(dir string) Registry {
	return DefaultRegistry()
}

// Path returns the pipe path for name.
func (r *PipeRegistry) Path(name string) string {
	return `\\.\pipe\` + name
}

// Register creates the named pipe listener.
func (r *PipeRegistry) Register(name string) (net.Listener, error) {
	sddl := r.SecurityDescriptor
	if sddl == "" {
		sddl = pipeSDDL
	}
	ln, err := winio.ListenPipe(r.Path(name), &winio.PipeConfig{
		SecurityDescriptor: sddl,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return ln, nil
}

// Dial opens the named pipe for name.
func (r *PipeRegistry) Dial(ctx context.Context, name string) (net.Conn, error) {
	conn, err := winio.DialPipeContext(ctx, r.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", dvrerr.ErrNotFound, err)
		}
		return nil, err
	}
	return conn, nil
}
