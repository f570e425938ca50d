package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sysdvr/internal/ipc"
	"sysdvr/util"
)

// BuildFunc constructs the transport for a mode.
type BuildFunc func(ctx context.Context, mode ipc.Mode) (Mode, error)

// Manager runs at most one transport and swaps it when the service mode
// changes.  It implements service.Switcher.
type Manager struct {
	Build  BuildFunc
	Logger *util.Logger

	// Grace bounds how long a switch waits for the old transport to
	// stop.
	Grace time.Duration

	mu      sync.Mutex
	base    context.Context
	current *running
}

type running struct {
	mode   ipc.Mode
	cancel context.CancelFunc
	done   chan struct{}
}

// Start sets the parent context of every transport.  Transports are
// stopped when it ends.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.base = ctx
	m.mu.Unlock()
}

// Switch replaces the active transport with the one for to.  The new
// transport is built before the old one is stopped, so a build failure
// is returned with the old transport still running.  The new transport
// runs in the background.
func (m *Manager) Switch(from, to ipc.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	base := m.base
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(base)

	t, err := m.Build(ctx, to)
	if err != nil {
		cancel()
		return fmt.Errorf("build %s transport: %w", to, err)
	}

	m.stopLocked()
	if t == nil {
		cancel()
		m.logger().Verbose("transport %s -> %s: nothing to run", from, to)
		return nil
	}

	r := &running{mode: to, cancel: cancel, done: make(chan struct{})}
	m.current = r
	go func() {
		defer close(r.done)
		if err := t.Run(ctx); err != nil {
			m.logger().Error("%s transport: %v", to, err)
		}
	}()
	m.logger().Verbose("transport %s started", to)
	return nil
}

// Active returns the mode of the running transport, ModeNone if idle.
func (m *Manager) Active() ipc.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ipc.ModeNone
	}
	select {
	case <-m.current.done:
		return ipc.ModeNone
	default:
		return m.current.mode
	}
}

// Stop stops the active transport.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	r := m.current
	if r == nil {
		return
	}
	m.current = nil
	r.cancel()

	grace := m.Grace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	select {
	case <-r.done:
	case <-time.After(grace):
		m.logger().Warn("%s transport did not stop within %s", r.mode, grace)
	}
}

func (m *Manager) logger() *util.Logger {
	if m.Logger == nil {
		return util.NewLogger(0)
	}
	return m.Logger
}
