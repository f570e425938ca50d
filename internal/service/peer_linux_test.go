//go:build linux

package service

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	dvrerr "sysdvr/internal/errors"
)

func unixPair(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("unix", filepath.Join(t.TempDir(), "peer.sock"))
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()
	client, err = net.Dial("unix", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	server = <-accepted
	if server == nil {
		t.Fatal("accept failed")
	}
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func TestAllowUIDs_UnixPeer(t *testing.T) {
	_, conn := unixPair(t)
	uid := uint32(os.Getuid())

	if err := AllowUIDs(uid)(conn); err != nil {
		t.Fatalf("own uid rejected: %v", err)
	}

	err := AllowUIDs(uid + 1)(conn)
	if uid == 0 {
		if err != nil {
			t.Fatalf("root rejected: %v", err)
		}
		return
	}
	if !errors.Is(err, dvrerr.ErrPermission) {
		t.Fatalf("err = %v, want ErrPermission", err)
	}
}

func TestAllowUIDs_NonUnixConn(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	if err := AllowUIDs()(a); err != nil {
		t.Fatalf("pipe conn rejected: %v", err)
	}
}
