package util

import (
	"testing"
)

func TestBindHost(t *testing.T) {
	if got := BindHost(true); got != "127.0.0.1" {
		t.Errorf("local only: got %q", got)
	}
	if got := BindHost(false); got != "0.0.0.0" {
		t.Errorf("all interfaces: got %q", got)
	}
}

func TestFormatAddr(t *testing.T) {
	if got := FormatAddr("1.2.3.4", 6667); got != "1.2.3.4:6667" {
		t.Errorf("got %q, want %q", got, "1.2.3.4:6667")
	}
}

func TestValidPort(t *testing.T) {
	for port, want := range map[int]bool{0: false, 1: true, 6666: true, 65535: true, 65536: false, -1: false} {
		if ValidPort(port) != want {
			t.Errorf("ValidPort(%d) = %v", port, !want)
		}
	}
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	if !ValidPort(port) {
		t.Errorf("port %d out of range", port)
	}
}
