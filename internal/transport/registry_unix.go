//go:build !windows

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"syscall"

	dvrerr "sysdvr/internal/errors"
)

// DefaultSocketDir holds the service sockets.
const DefaultSocketDir = "/var/run/sysdvr"

// DefaultSocketMode restricts a service socket to its owner.
const DefaultSocketMode os.FileMode = 0o600

// SocketRegistry registers services as unix sockets named <Dir>/<name>.sock.
type SocketRegistry struct {
	Dir  string
	Mode os.FileMode // socket permissions (default DefaultSocketMode)
}

// DefaultRegistry returns the platform registry.
func DefaultRegistry() Registry {
	return &SocketRegistry{Dir: DefaultSocketDir}
}

// NewRegistry returns a registry rooted at dir, or the default
// registry when dir is empty.
func NewRegistry(dir string) Registry {
	if dir == "" {
		return DefaultRegistry()
	}
	return &SocketRegistry{Dir: dir}
}

// Path returns the socket path for name.
func (r *SocketRegistry) Path(name string) string {
	dir := r.Dir
	if dir == "" {
		dir = DefaultSocketDir
	}
	return filepath.Join(dir, name+".sock")
}

// Register creates the socket, replacing a stale one left by a previous
// instance.
func (r *SocketRegistry) Register(name string) (net.Listener, error) {
	path := r.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	// Remove stale socket
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("register %s: remove stale socket: %w", name, err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	mode := r.Mode
	if mode == 0 {
		mode = DefaultSocketMode
	}
	if err := os.Chmod(path, mode); err != nil {
		ln.Close()
		return nil, fmt.Errorf("register %s: chmod socket: %w", name, err)
	}
	return ln, nil
}

// Dial connects to the socket for name.
func (r *SocketRegistry) Dial(ctx context.Context, name string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", r.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("%w: %v", dvrerr.ErrNotFound, err)
		}
		return nil, err
	}
	return conn, nil
}
