package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Kind names one elementary stream.
type Kind int

const (
	Video Kind = iota
	Audio
)

// Default ports of the raw TCP transport.
const (
	VideoPort  = 6667
	AudioPort  = 6668
	StreamPort = 6666 // NETWORK_STREAM, both kinds on one socket
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Port returns the default raw TCP port for k.
func (k Kind) Port() int {
	if k == Audio {
		return AudioPort
	}
	return VideoPort
}

// Source produces packets for a stream.  Next blocks until a packet is
// available or ctx ends.
type Source interface {
	Next(ctx context.Context) (Packet, error)
}

// NullSource never produces a packet.  It stands in when no capture
// backend is attached.
type NullSource struct{}

func (NullSource) Next(ctx context.Context) (Packet, error) {
	<-ctx.Done()
	return Packet{}, ctx.Err()
}

// ErrSourceClosed is returned by sources that have no more packets.
var ErrSourceClosed = errors.New("source closed")

// ChanSource adapts a channel of packets.  A closed channel ends the
// stream with ErrSourceClosed.
type ChanSource <-chan Packet

func (c ChanSource) Next(ctx context.Context) (Packet, error) {
	select {
	case p, ok := <-c:
		if !ok {
			return Packet{}, ErrSourceClosed
		}
		return p, nil
	case <-ctx.Done():
		return Packet{}, ctx.Err()
	}
}

// Merge interleaves packets from several sources in arrival order.  The
// merged source ends when ctx ends or every input has closed.
func Merge(ctx context.Context, sources ...Source) Source {
	out := make(chan Packet)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			for {
				p, err := src.Next(ctx)
				if err != nil {
					return
				}
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return ChanSource(out)
}
