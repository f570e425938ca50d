// Package service implements the command side of the sysdvr service: it
// accepts client connections from the registry and answers GET_VERSION,
// GET_MODE and SET_MODE against the shared mode [State].
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/ipc"
	"sysdvr/internal/metrics"
	"sysdvr/internal/transport"
	"sysdvr/util"
)

// Server dispatches commands.  Each connection is served on its own
// goroutine, one request at a time.
type Server struct {
	State    *State
	Switcher Switcher // optional; called on every mode change

	// Authorize, when set, vets each connection before any command is
	// read.  A non-nil error closes the connection.
	Authorize func(net.Conn) error

	Logger  *util.Logger
	Metrics *metrics.Collector
}

var defaultLogger = util.NewLogger(0)

func (s *Server) logger() *util.Logger {
	if s.Logger == nil {
		return defaultLogger
	}
	return s.Logger
}

// Serve accepts connections on ln until ctx is cancelled or ln fails.
// It closes ln and any open connections and waits for their handlers
// before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.State == nil {
		s.State = NewState(ipc.ModeNone)
	}
	log := s.logger()

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	log.Verbose("serving on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.ServeConn(ctx, conn); err != nil {
				log.Debug("connection: %v", err)
			}
		}()
	}
}

// ServeConn handles requests on conn until the peer disconnects, sends a
// malformed frame, or ctx ends.  conn is closed on return.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if s.Authorize != nil {
		if err := s.Authorize(conn); err != nil {
			s.logger().Warn("rejected client: %v", err)
			return err
		}
	}

	s.Metrics.ClientConnected()
	defer s.Metrics.ClientDisconnected()

	for {
		req, err := ipc.ReadRequest(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || util.IsHarmless(err) {
				return nil
			}
			return err
		}

		resp := s.Dispatch(req)
		if err := ipc.WriteResponse(conn, resp); err != nil {
			if util.IsHarmless(err) {
				return nil
			}
			return fmt.Errorf("write response: %w", err)
		}
	}
}

// Dispatch executes a single request.  s.State must be set.
func (s *Server) Dispatch(req ipc.Request) ipc.Response {
	var resp ipc.Response
	switch req.Command {
	case ipc.CmdGetVersion:
		resp.Value = ipc.Version

	case ipc.CmdGetMode:
		v, err := s.State.Mode().Wire()
		if err != nil {
			resp.Result = ipc.MakeResult(ipc.ModuleDVR, ipc.DescInvalidMode)
			break
		}
		resp.Value = v

	case ipc.CmdSetMode:
		resp.Result = s.setMode(req.Arg)

	default:
		resp.Result = ipc.MakeResult(ipc.ModuleDVR, ipc.DescUnknownCommand)
	}

	s.Metrics.CommandHandled(!resp.Result.Succeeded())
	s.logger().Debug("%s(%d) -> %s", req.Command, req.Arg, resp.Result)
	return resp
}

func (s *Server) setMode(arg uint32) ipc.Result {
	mode, ok := ipc.ModeFromWire(arg)
	if !ok {
		return ipc.MakeResult(ipc.ModuleDVR, ipc.DescInvalidMode)
	}

	from := s.State.Mode()
	changed, err := s.State.Set(mode, s.Switcher)
	if err != nil {
		s.logger().Error("switch %s -> %s: %v", from, mode, err)
		s.Metrics.RecordError(err.Error())
		return ipc.MakeResult(ipc.ModuleDVR, ipc.DescSwitchFailed)
	}
	if changed {
		s.Metrics.ModeSwitched()
		s.logger().Info("mode %s -> %s", from, mode)
	}
	return ipc.ResultSuccess
}

// AllowUIDs returns an Authorize func admitting root and the listed uids.
// Connections whose peer cannot be identified are admitted and left to
// the endpoint's own permissions.
func AllowUIDs(uids ...uint32) func(net.Conn) error {
	return func(conn net.Conn) error {
		uid, ok, err := transport.PeerUID(conn)
		if err != nil {
			return err
		}
		if !ok || uid == 0 {
			return nil
		}
		for _, u := range uids {
			if uid == u {
				return nil
			}
		}
		return fmt.Errorf("%w: uid %d", dvrerr.ErrPermission, uid)
	}
}
