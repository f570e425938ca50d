package cmd

import (
	"context"
	"fmt"
	"os"

	"sysdvr/config"
	"sysdvr/internal/client"
	"sysdvr/internal/core"
	"sysdvr/internal/ipc"
	"sysdvr/internal/metrics"
	"sysdvr/internal/service"
	"sysdvr/internal/transport"
)

// serve runs the service until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	initial, err := a.cfg.Mode()
	if err != nil {
		return err
	}

	if a.cfg.DryRun {
		fmt.Fprintf(a.stdout, "config ok: mode=%s video=%d audio=%d stream=%d policy=%s\n",
			initial, a.cfg.VideoPort, a.cfg.AudioPort, a.cfg.StreamPort, a.cfg.ListenerPolicy)
		return nil
	}

	m := metrics.New()
	builder := &core.Builder{
		Config:  a.cfg,
		Logger:  a.logger,
		Metrics: m,
	}
	mgr := &core.Manager{
		Build:  builder.Build,
		Logger: a.logger.Named("transport"),
		Grace:  config.DefaultGracePeriod,
	}
	mgr.Start(ctx)
	defer func() {
		a.logger.Verbose("stopping %s transport", mgr.Active())
		mgr.Stop()
	}()

	state := service.NewState(ipc.ModeNone)
	if _, err := state.Set(initial, mgr); err != nil {
		return fmt.Errorf("start in %s: %w", initial, err)
	}

	srv := &service.Server{
		State:    state,
		Switcher: mgr,
		Logger:   a.logger.Named("service"),
		Metrics:  m,
	}
	if a.cfg.PeerCheck {
		srv.Authorize = service.AllowUIDs(uint32(os.Getuid()))
	}

	ln, err := a.registry().Register(ipc.ServiceName)
	if err != nil {
		return err
	}

	a.logger.Info("sysdvr %s serving %q in mode %s", version, ipc.ServiceName, initial)
	err = srv.Serve(ctx, ln)
	a.logger.Verbose("metrics: %s", m.JSON())
	return err
}

func (a *app) registry() transport.Registry {
	return transport.NewRegistry(a.cfg.SocketDir)
}

func (a *app) connect(ctx context.Context) (*client.Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	h, err := client.Connect(ctx, a.registry())
	if err != nil {
		return nil, fmt.Errorf("%w\n  hint: is `sysdvr serve` running?", err)
	}
	if h.IsStub() {
		a.logger.Verbose("built without service support; answering locally")
	}
	h.Timeout = a.timeout()
	return h, nil
}
