package util

import (
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
)

func TestIsHarmless(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"eof", io.EOF, true},
		{"closed", net.ErrClosed, true},
		{"wrapped reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"op closed", &net.OpError{Op: "accept", Err: net.ErrClosed}, true},
		{"accept aborted", &net.OpError{Op: "accept", Err: syscall.ECONNABORTED}, true},
		{"unexpected eof", io.ErrUnexpectedEOF, false},
		{"refused", syscall.ECONNREFUSED, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHarmless(tt.err); got != tt.want {
				t.Errorf("IsHarmless(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBufPool_RoundTrip(t *testing.T) {
	buf := GetBuf(100)
	if buf == nil {
		t.Fatal("GetBuf returned nil")
	}
	if len(*buf) != 100 {
		t.Errorf("buffer len = %d, want 100", len(*buf))
	}
	(*buf)[0] = 0xFF
	PutBuf(buf)

	big := GetBuf(DefaultBufSize * 2)
	if len(*big) != DefaultBufSize*2 {
		t.Errorf("big buffer len = %d", len(*big))
	}
	PutBuf(big)
}

func TestPutBuf_Nil(t *testing.T) {
	// Should not panic.
	PutBuf(nil)
}
