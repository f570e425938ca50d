//go:build !unix

package listener

import (
	"net"

	dvrerr "sysdvr/internal/errors"
)

// attempt falls back to the portable net API.  Bind and listen happen in
// one call here, so any failure is reported as the bind step, and the
// NonBlocking flag is ignored.
func attempt(cfg Config) (net.Listener, *dvrerr.ListenerError) {
	ln, err := net.Listen("tcp4", cfg.Addr())
	if err != nil {
		return nil, listenerError(dvrerr.StepBind, cfg, err)
	}
	return ln, nil
}
