package util

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// DefaultBufSize is the standard buffer size for stream payloads (32 KiB).
const DefaultBufSize = 32 * 1024

// peerGone lists the errnos a socket reports once the other side has
// hung up or the connection was torn down before accept returned.
var peerGone = []syscall.Errno{
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.EPIPE,
}

// IsHarmless reports whether err is the expected result of a client
// disconnecting or a listener being closed during a mode switch.
func IsHarmless(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
		return true
	}
	for _, errno := range peerGone {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
