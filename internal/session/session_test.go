package session

import (
	"net"
	"testing"
)

func TestNew(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	s := New(a, "video", nil)
	if s.Stream != "video" || s.Logger == nil {
		t.Fatalf("session = %+v", s)
	}
	if s.Peer() == "" {
		t.Error("empty peer")
	}
	if s.Elapsed() < 0 {
		t.Error("negative elapsed")
	}
}
