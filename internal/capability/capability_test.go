package capability

import (
	"context"
	"net"
	"testing"
	"time"

	"sysdvr/internal/bridge"
	"sysdvr/internal/metrics"
	"sysdvr/internal/session"
)

// TestStream_DeliversPackets verifies Stream frames every source packet
// onto the client connection.
func TestStream_DeliversPackets(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	src := make(chan bridge.Packet, 2)
	src <- bridge.Packet{Timestamp: 10, Data: []byte("frame-a")}
	src <- bridge.Packet{Timestamp: 20, Data: []byte("frame-b")}
	close(src)

	m := metrics.New()
	st := &Stream{Source: bridge.ChanSource(src), Metrics: m}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- st.Handle(ctx, session.New(server, "video", nil)) }()

	r := bridge.NewReader(client)
	defer r.Close()
	for _, want := range []string{"frame-a", "frame-b"} {
		p, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if string(p.Data) != want {
			t.Errorf("payload = %q, want %q", p.Data, want)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if m.PacketsSent() != 2 {
		t.Errorf("packets sent = %d, want 2", m.PacketsSent())
	}
}

// TestStream_ClientHangup verifies Handle returns once the client goes
// away even though the source never produces anything.
func TestStream_ClientHangup(t *testing.T) {
	client, server := net.Pipe()
	st := &Stream{Source: bridge.NullSource{}}

	done := make(chan error, 1)
	go func() { done <- st.Handle(context.Background(), session.New(server, "audio", nil)) }()

	client.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Handle: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Handle did not return after hangup")
	}
}
