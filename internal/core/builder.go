package core

import (
	"context"
	"fmt"
	"strings"

	"sysdvr/config"
	"sysdvr/internal/bridge"
	"sysdvr/internal/capability"
	"sysdvr/internal/ipc"
	"sysdvr/internal/listener"
	"sysdvr/internal/metrics"
	"sysdvr/util"
)

// Debug tags passed to the listener bootstrap; they end up in fatal
// diagnostic codes.
const (
	TagVideo  uint32 = 1
	TagAudio  uint32 = 2
	TagStream uint32 = 3
)

// Sources supplies the capture streams.  Nil members stream nothing.
type Sources struct {
	Video bridge.Source
	Audio bridge.Source
}

func (s Sources) video() bridge.Source {
	if s.Video == nil {
		return bridge.NullSource{}
	}
	return s.Video
}

func (s Sources) audio() bridge.Source {
	if s.Audio == nil {
		return bridge.NullSource{}
	}
	return s.Audio
}

// Builder constructs the transport for a service mode.
type Builder struct {
	Config  *config.Config
	Sources Sources
	Policy  listener.Policy // nil selects from Config.ListenerPolicy
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Build returns the transport for mode, or nil for ModeNone.  ctx
// bounds helper goroutines such as the NETWORK_STREAM source merge.
func (b *Builder) Build(ctx context.Context, mode ipc.Mode) (Mode, error) {
	switch mode {
	case ipc.ModeNone:
		return nil, nil
	case ipc.ModeUSB:
		return &IdleMode{Name: mode.String(), Logger: b.logger()}, nil
	case ipc.ModeRawTCP:
		return b.buildRawTCP(), nil
	case ipc.ModeNetworkStream:
		return b.buildNetworkStream(ctx), nil
	}
	return nil, fmt.Errorf("no transport for mode %d", int(mode))
}

// ── mode builders ────────────────────────────────────────────────────

func (b *Builder) buildRawTCP() Mode {
	cfg := b.config()
	return &GroupMode{Modes: []Mode{
		b.listenMode("video", cfg.VideoPort, TagVideo, b.Sources.video()),
		b.listenMode("audio", cfg.AudioPort, TagAudio, b.Sources.audio()),
	}}
}

func (b *Builder) buildNetworkStream(ctx context.Context) Mode {
	cfg := b.config()
	src := bridge.Merge(ctx, b.Sources.video(), b.Sources.audio())
	return b.listenMode("stream", cfg.StreamPort, TagStream, src)
}

// ── shared helpers ───────────────────────────────────────────────────

func (b *Builder) listenMode(name string, port int, tag uint32, src bridge.Source) *ListenMode {
	cfg := b.config()
	logger := b.logger().Named(name)
	return &ListenMode{
		Name: name,
		Listener: listener.Config{
			Port:        port,
			LocalOnly:   cfg.LocalOnly,
			DebugTag:    tag,
			NonBlocking: cfg.NonBlocking,
		},
		Bootstrap: &listener.Bootstrap{
			Policy:  b.policy(),
			Logger:  logger,
			Metrics: b.Metrics,
		},
		Capability: &capability.Stream{Source: src, Metrics: b.Metrics},
		Logger:     logger,
		Metrics:    b.Metrics,
	}
}

func (b *Builder) config() *config.Config {
	if b.Config == nil {
		return config.Default()
	}
	return b.Config
}

func (b *Builder) logger() *util.Logger {
	if b.Logger == nil {
		return util.NewLogger(0)
	}
	return b.Logger
}

func (b *Builder) policy() listener.Policy {
	if b.Policy != nil {
		return b.Policy
	}
	return PolicyFor(b.config())
}

// PolicyFor selects the listener failure policy named by cfg.
func PolicyFor(cfg *config.Config) listener.Policy {
	if strings.EqualFold(cfg.ListenerPolicy, config.PolicyFatal) {
		return &listener.FatalOnFailure{}
	}
	return &listener.QuietRetry{Backoff: cfg.Backoff()}
}
