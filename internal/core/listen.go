package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"sysdvr/internal/capability"
	"sysdvr/internal/listener"
	"sysdvr/internal/metrics"
	"sysdvr/internal/session"
	"sysdvr/util"
)

// ListenMode obtains a socket from the listener bootstrap and serves one
// stream client at a time with its capability.
type ListenMode struct {
	Name       string // stream name, e.g. "video"
	Listener   listener.Config
	Bootstrap  *listener.Bootstrap
	Capability capability.Capability
	Logger     *util.Logger
	Metrics    *metrics.Collector
}

// Run listens and serves clients until ctx is cancelled.
func (m *ListenMode) Run(ctx context.Context) error {
	boot := m.Bootstrap
	if boot == nil {
		boot = &listener.Bootstrap{Logger: m.Logger, Metrics: m.Metrics}
	}

	ln, err := boot.Listen(ctx, m.Listener)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%s listener: %w", m.Name, err)
	}
	defer ln.Close()

	// Shut the listener down when the context expires.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%s accept: %w", m.Name, err)
		}

		m.Metrics.StreamClientAccepted()
		sess := session.New(conn, m.Name, m.Logger)
		sess.Logger.Info("client %s connected", sess.Peer())

		err = m.Capability.Handle(ctx, sess)
		conn.Close()
		if err != nil && !util.IsHarmless(err) {
			sess.Logger.Warn("client %s: %v", sess.Peer(), err)
			m.Metrics.RecordError(err.Error())
		}
		sess.Logger.Verbose("client %s left after %s", sess.Peer(), sess.Elapsed().Round(time.Millisecond))
	}
}

// GroupMode runs several transports together, e.g. the video and audio
// listeners of RAW_TCP.  If one fails the others are stopped.
type GroupMode struct {
	Modes []Mode
}

// Run starts every member and returns the first error once all have
// stopped.
func (g *GroupMode) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, m := range g.Modes {
		m := m
		eg.Go(func() error { return m.Run(ctx) })
	}
	return eg.Wait()
}
