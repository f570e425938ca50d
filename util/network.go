package util

import (
	"fmt"
	"net"
	"strconv"
)

// Bind scopes for service listeners.
const (
	LoopbackAddress = "127.0.0.1"
	WildcardAddress = "0.0.0.0"
)

// BindHost returns the loopback address when localOnly is set, the
// IPv4 wildcard otherwise.
func BindHost(localOnly bool) string {
	if localOnly {
		return LoopbackAddress
	}
	return WildcardAddress
}

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// ValidPort reports whether port is a usable TCP port number.
func ValidPort(port int) bool {
	return port >= 1 && port <= 65535
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
