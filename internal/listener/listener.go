// Package listener builds the TCP listening sockets used by the network
// transport modes.
//
// A single [Attempt] walks socket → options → bind → listen and either
// returns a listener that is already accepting or closes whatever it had
// created and reports the failing step.  [Bootstrap.Listen] repeats
// attempts until one succeeds, asking a [Policy] what to do after every
// failure.
package listener

import (
	"context"
	"net"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/metrics"
	"sysdvr/util"
)

// DefaultBacklog is the listen backlog.  Transports serve one client at
// a time.
const DefaultBacklog = 1

// Config describes one listener.
type Config struct {
	Port      int
	LocalOnly bool // bind 127.0.0.1 instead of every interface

	// DebugTag identifies the caller in fatal diagnostic codes.  It has
	// no effect on behaviour.
	DebugTag uint32

	// NonBlocking sets O_NONBLOCK on the raw descriptor as its own step,
	// before bind, so a failure is reported as an option error.  Turning
	// it off only skips that step: the hand-off to the Go runtime poller
	// always leaves the descriptor non-blocking.  Consumers still use the
	// listener as if blocking.
	NonBlocking bool

	// Backlog overrides DefaultBacklog when positive.
	Backlog int
}

// Addr returns the bind address as host:port.
func (c Config) Addr() string {
	return util.FormatAddr(util.BindHost(c.LocalOnly), c.Port)
}

func (c Config) backlog() int {
	if c.Backlog > 0 {
		return c.Backlog
	}
	return DefaultBacklog
}

// Attempt makes one bootstrap attempt.  On failure the error is a
// [*dvrerr.ListenerError] naming the step, and no socket is left open.
func Attempt(cfg Config) (net.Listener, error) {
	ln, err := attempt(cfg)
	if err != nil {
		return nil, err
	}
	return ln, nil
}

// Bootstrap retries [Attempt] under a policy.
type Bootstrap struct {
	Policy  Policy // defaults to QuietRetry with the 500ms constant delay
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Listen blocks until a listener is produced or the policy gives up.
// Under the default policy it only returns early when ctx ends.
func (b *Bootstrap) Listen(ctx context.Context, cfg Config) (net.Listener, error) {
	policy := b.Policy
	if policy == nil {
		policy = &QuietRetry{}
	}
	logger := b.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}

	for n := 1; ; n++ {
		ln, err := attempt(cfg)
		if err == nil {
			if n > 1 {
				logger.Info("listening on %s after %d attempts", ln.Addr(), n)
			} else {
				logger.Verbose("listening on %s", ln.Addr())
			}
			return ln, nil
		}

		b.Metrics.ListenerRetry()
		b.Metrics.RecordError(err.Error())
		logger.Debug("attempt %d: %v", n, err)

		if perr := policy.Failed(ctx, cfg, n, err); perr != nil {
			return nil, perr
		}
	}
}

// Create is Bootstrap{Policy: policy}.Listen without logging or metrics.
func Create(ctx context.Context, cfg Config, policy Policy) (net.Listener, error) {
	b := &Bootstrap{Policy: policy}
	return b.Listen(ctx, cfg)
}

func listenerError(step dvrerr.Step, cfg Config, err error) *dvrerr.ListenerError {
	return &dvrerr.ListenerError{Step: step, Addr: cfg.Addr(), Err: err}
}
