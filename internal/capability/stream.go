package capability

import (
	"context"
	"errors"
	"fmt"

	"sysdvr/internal/bridge"
	"sysdvr/internal/metrics"
	"sysdvr/internal/session"
	"sysdvr/util"
)

// Stream writes packets from Source to the client in bridge framing.
type Stream struct {
	Source  bridge.Source
	Metrics *metrics.Collector
}

// Handle pumps packets until the client disconnects, the source closes
// or ctx ends.  A departed client is not an error.
func (s *Stream) Handle(ctx context.Context, sess *session.Session) error {
	src := s.Source
	if src == nil {
		src = bridge.NullSource{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { sess.Conn.Close() })
	defer stop()

	// Watch for the client hanging up while the source is quiet.
	go func() {
		var b [1]byte
		for {
			if _, err := sess.Conn.Read(b[:]); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		p, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, bridge.ErrSourceClosed) {
				return nil
			}
			return fmt.Errorf("%s source: %w", sess.Stream, err)
		}
		if err := bridge.WritePacket(sess.Conn, p); err != nil {
			if util.IsHarmless(err) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%s write: %w", sess.Stream, err)
		}
		s.Metrics.PacketSent(len(p.Data))
	}
}
