package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"sysdvr/internal/metrics"
	"sysdvr/internal/retry"
	"sysdvr/util"
)

// Sink consumes received packets.  p.Data is only valid during the call.
type Sink interface {
	WritePacket(kind Kind, p Packet) error
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(kind Kind, p Packet) error

func (f SinkFunc) WritePacket(kind Kind, p Packet) error { return f(kind, p) }

// Client receives one stream from a console running the RAW_TCP
// transport.
type Client struct {
	Host    string
	Kind    Kind
	Port    int           // defaults to Kind.Port()
	Timeout time.Duration // dial timeout, 0 for none

	// Backoff, when set, redials after the connection fails until ctx
	// ends or the budget is exhausted.
	Backoff *retry.Backoff

	Logger  *util.Logger
	Metrics *metrics.Collector
}

func (c *Client) addr() string {
	port := c.Port
	if port == 0 {
		port = c.Kind.Port()
	}
	return util.FormatAddr(c.Host, port)
}

// Run connects and feeds packets to sink until the stream ends, ctx is
// cancelled or sink returns an error.
func (c *Client) Run(ctx context.Context, sink Sink) error {
	if c.Backoff == nil {
		return c.receive(ctx, sink)
	}

	b := *c.Backoff
	b.OnRetry = func(attempt int, err error, delay time.Duration) {
		if c.Logger != nil {
			c.Logger.Warn("%s: %v (attempt %d, retrying in %s)", c.Kind, err, attempt, delay)
		}
	}
	return b.Do(ctx, func(int) error {
		err := c.receive(ctx, sink)
		var se *sinkError
		if errors.As(err, &se) {
			return retry.Permanent(se.err)
		}
		return err
	})
}

func (c *Client) receive(ctx context.Context, sink Sink) error {
	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.Kind, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if c.Logger != nil {
		c.Logger.Verbose("%s: connected to %s", c.Kind, conn.RemoteAddr())
	}

	r := NewReader(conn)
	defer r.Close()
	for {
		p, err := r.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if util.IsHarmless(err) {
				return nil
			}
			return fmt.Errorf("%s stream: %w", c.Kind, err)
		}
		c.Metrics.PacketSent(len(p.Data))
		if err := sink.WritePacket(c.Kind, p); err != nil {
			return &sinkError{err}
		}
	}
}

// sinkError marks failures of the consumer, which are not retried.
type sinkError struct{ err error }

func (e *sinkError) Error() string { return e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }
