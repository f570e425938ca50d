//go:build unix

package listener

import (
	"net"
	"os"

	"golang.org/x/sys/unix"

	dvrerr "sysdvr/internal/errors"
)

func attempt(cfg Config) (net.Listener, *dvrerr.ListenerError) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, listenerError(dvrerr.StepSocket, cfg, os.NewSyscallError("socket", err))
	}
	unix.CloseOnExec(fd)

	fail := func(step dvrerr.Step, call string, err error) (net.Listener, *dvrerr.ListenerError) {
		unix.Close(fd) //nolint:errcheck
		return nil, listenerError(step, cfg, os.NewSyscallError(call, err))
	}

	if cfg.NonBlocking {
		if err := unix.SetNonblock(fd, true); err != nil {
			return fail(dvrerr.StepOption, "fcntl", err)
		}
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail(dvrerr.StepOption, "setsockopt", err)
	}

	sa := &unix.SockaddrInet4{Port: cfg.Port}
	if cfg.LocalOnly {
		sa.Addr = [4]byte{127, 0, 0, 1}
	}
	if err := unix.Bind(fd, sa); err != nil {
		return fail(dvrerr.StepBind, "bind", err)
	}

	if err := unix.Listen(fd, cfg.backlog()); err != nil {
		return fail(dvrerr.StepListen, "listen", err)
	}

	// FileListener dups the descriptor; the original is closed either way.
	f := os.NewFile(uintptr(fd), "sysdvr-listener")
	ln, err := net.FileListener(f)
	f.Close()
	if err != nil {
		return nil, listenerError(dvrerr.StepListen, cfg, err)
	}
	return ln, nil
}
