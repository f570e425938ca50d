// Package client is the caller side of the sysdvr command interface.  A
// Handle owns one connection to the service and issues commands on it
// synchronously.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/ipc"
	"sysdvr/internal/transport"
)

// Handle is a connection to the service.  It is safe for concurrent use;
// calls are serialized so only one request is ever in flight.  A failed
// send or receive, including a Timeout, closes the handle: every later
// call reports the service unavailable.
type Handle struct {
	mu     sync.Mutex
	conn   net.Conn // nil for a stub handle
	closed bool

	// Timeout bounds each request/response exchange when positive.
	Timeout time.Duration
}

// Dial connects to the service through reg (the platform registry when
// nil).  A missing service yields an error matching both
// [dvrerr.ErrServiceUnavailable] and [dvrerr.ErrNotFound].
func Dial(ctx context.Context, reg transport.Registry) (*Handle, error) {
	if reg == nil {
		reg = transport.DefaultRegistry()
	}
	conn, err := reg.Dial(ctx, ipc.ServiceName)
	if err != nil {
		return nil, dvrerr.Unavailable("connect", ipc.ServiceName, err)
	}
	return &Handle{conn: conn}, nil
}

// NewStub returns a handle that talks to no service: the version is the
// built-in constant, the mode is always off and every change succeeds
// without effect.
func NewStub() *Handle {
	return &Handle{}
}

// IsStub reports whether h is a stub handle.
func (h *Handle) IsStub() bool { return h.conn == nil }

// Close releases the connection.  Calling Close again is a no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.conn != nil {
		return h.conn.Close()
	}
	return nil
}

// GetVersion returns the service's protocol version.
func (h *Handle) GetVersion() (uint32, error) {
	return h.call(ipc.CmdGetVersion, 0)
}

// GetMode returns the active transport mode.
func (h *Handle) GetMode() (ipc.Mode, error) {
	v, err := h.call(ipc.CmdGetMode, 0)
	if err != nil {
		return 0, err
	}
	mode, ok := ipc.ModeFromWire(v)
	if !ok {
		return 0, fmt.Errorf("%s: service reported unknown mode %d", ipc.CmdGetMode, v)
	}
	return mode, nil
}

// SetMode switches the service to mode.  Requesting the active mode
// succeeds without effect.
func (h *Handle) SetMode(mode ipc.Mode) error {
	arg, err := mode.Wire()
	if err != nil {
		return err
	}
	_, err = h.call(ipc.CmdSetMode, arg)
	return err
}

func (h *Handle) SetUSB() error           { return h.SetMode(ipc.ModeUSB) }
func (h *Handle) SetNetworkStream() error { return h.SetMode(ipc.ModeNetworkStream) }
func (h *Handle) SetRawTCP() error        { return h.SetMode(ipc.ModeRawTCP) }
func (h *Handle) SetOff() error           { return h.SetMode(ipc.ModeNone) }

func (h *Handle) call(cmd ipc.Command, arg uint32) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, dvrerr.Unavailable("send", ipc.ServiceName, dvrerr.ErrClosed)
	}
	if h.conn == nil {
		return stubAnswer(cmd), nil
	}

	if h.Timeout > 0 {
		h.conn.SetDeadline(time.Now().Add(h.Timeout)) //nolint:errcheck
		defer h.conn.SetDeadline(time.Time{})         //nolint:errcheck
	}

	if err := ipc.WriteRequest(h.conn, ipc.Request{Command: cmd, Arg: arg}); err != nil {
		return 0, h.broken("send", err)
	}
	resp, err := ipc.ReadResponse(h.conn)
	if err != nil {
		return 0, h.broken("recv", err)
	}
	if err := dvrerr.Dispatch(uint32(cmd), uint32(resp.Result)); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// broken closes a connection whose exchange failed part way.  A late
// reply may still be queued on it, so it can no longer be trusted to
// pair responses with requests.  h.mu must be held.
func (h *Handle) broken(op string, err error) error {
	h.closed = true
	h.conn.Close() //nolint:errcheck
	return dvrerr.Unavailable(op, ipc.ServiceName, err)
}

func stubAnswer(cmd ipc.Command) uint32 {
	switch cmd {
	case ipc.CmdGetVersion:
		return ipc.Version
	case ipc.CmdGetMode:
		v, _ := ipc.ModeNone.Wire()
		return v
	}
	return 0
}
