// Package ipc defines the sysdvr command protocol: the service name, the
// closed command and mode enumerations, result codes, and the fixed-size
// request/response frames exchanged over a service connection.
package ipc

import (
	"fmt"
	"strings"
)

// ServiceName is the well-known name the service registers under.
const ServiceName = "sysdvr"

// Version is reported by GET_VERSION.  Clients compare it against their
// own copy to detect protocol skew.
const Version uint32 = 5

// Mode is the capture transport mode.  Exactly one is active at a time.
type Mode int

const (
	ModeNone Mode = iota
	ModeUSB
	ModeNetworkStream
	ModeRawTCP
)

// Modes lists every valid mode.
var Modes = []Mode{ModeNone, ModeUSB, ModeNetworkStream, ModeRawTCP}

// Wire values of each mode.  These are fixed by the protocol and do not
// follow the order of the Mode constants.
const (
	wireUSB           uint32 = 1
	wireRawTCP        uint32 = 2
	wireNone          uint32 = 3
	wireNetworkStream uint32 = 4
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "off"
	case ModeUSB:
		return "usb"
	case ModeNetworkStream:
		return "rtsp"
	case ModeRawTCP:
		return "tcp"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m belongs to the enumeration.
func (m Mode) Valid() bool {
	return m >= ModeNone && m <= ModeRawTCP
}

// IsNetwork reports whether m needs a TCP listener.
func (m Mode) IsNetwork() bool {
	return m == ModeNetworkStream || m == ModeRawTCP
}

// Wire returns the SET_MODE argument for m.
func (m Mode) Wire() (uint32, error) {
	switch m {
	case ModeNone:
		return wireNone, nil
	case ModeUSB:
		return wireUSB, nil
	case ModeNetworkStream:
		return wireNetworkStream, nil
	case ModeRawTCP:
		return wireRawTCP, nil
	}
	return 0, fmt.Errorf("invalid mode %d", int(m))
}

// ModeFromWire maps a wire value back to a Mode.
func ModeFromWire(v uint32) (Mode, bool) {
	switch v {
	case wireNone:
		return ModeNone, true
	case wireUSB:
		return ModeUSB, true
	case wireNetworkStream:
		return ModeNetworkStream, true
	case wireRawTCP:
		return ModeRawTCP, true
	}
	return 0, false
}

// ParseMode accepts the names printed by String plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "null":
		return ModeNone, nil
	case "usb":
		return ModeUSB, nil
	case "rtsp", "stream", "network":
		return ModeNetworkStream, nil
	case "tcp", "raw", "bridge":
		return ModeRawTCP, nil
	}
	return 0, fmt.Errorf("unknown mode %q (use off, usb, rtsp or tcp)", s)
}
