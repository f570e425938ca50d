//go:build !nodvr && !windows

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/ipc"
	"sysdvr/internal/service"
	"sysdvr/internal/transport"
)

func TestConnect_NotRegistered(t *testing.T) {
	reg := &transport.SocketRegistry{Dir: t.TempDir()}
	_, err := Connect(context.Background(), reg)
	if !dvrerr.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
	if !errors.Is(err, dvrerr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

// TestConnect_Scenario drives connect, raw TCP, off and close against a
// registered service.
func TestConnect_Scenario(t *testing.T) {
	reg := &transport.SocketRegistry{Dir: t.TempDir()}
	ln, err := reg.Register(ipc.ServiceName)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := &service.Server{State: service.NewState(ipc.ModeNone)}
	go srv.Serve(ctx, ln) //nolint:errcheck

	h, err := Connect(ctx, reg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := h.SetRawTCP(); err != nil {
		t.Fatal(err)
	}
	if m, err := h.GetMode(); err != nil || m != ipc.ModeRawTCP {
		t.Fatalf("GetMode = %s, %v", m, err)
	}
	if err := h.SetOff(); err != nil {
		t.Fatal(err)
	}
	if m, err := h.GetMode(); err != nil || m != ipc.ModeNone {
		t.Fatalf("GetMode = %s, %v", m, err)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.GetMode(); !errors.Is(err, dvrerr.ErrClosed) {
		t.Errorf("after Close = %v", err)
	}
}
