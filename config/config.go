// Package config defines the runtime configuration for the sysdvr
// service and its command-line client.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/ipc"
	"sysdvr/internal/retry"
	"sysdvr/util"
)

// Listener failure policies.
const (
	PolicyQuiet = "quiet"
	PolicyFatal = "fatal"
)

// Config holds every tuneable of one sysdvr process.
type Config struct {
	// ── Service ──────────────────────────────────────────────────────
	SocketDir   string // unix socket directory; empty for the platform default
	InitialMode string // mode the service starts in ("off" when empty)
	PeerCheck   bool   // only admit root and the service uid

	// ── Transports ───────────────────────────────────────────────────
	VideoPort   int
	AudioPort   int
	StreamPort  int
	LocalOnly   bool // bind loopback instead of every interface
	NonBlocking bool

	// ── Listener bootstrap ───────────────────────────────────────────
	ListenerPolicy  string        // "quiet" or "fatal"
	RetryDelay      time.Duration // first delay between attempts
	RetryMultiplier float64       // 1 for a constant delay
	RetryMaxDelay   time.Duration
	RetryMax        int // attempts before giving up, 0 for unlimited

	// ── Client ───────────────────────────────────────────────────────
	Timeout   time.Duration
	OutputDir string // bridge: write streams here instead of stdout
	NoVideo   bool
	NoAudio   bool

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	DryRun  bool
}

// Mode returns the parsed InitialMode.
func (c *Config) Mode() (ipc.Mode, error) {
	if c.InitialMode == "" {
		return ipc.ModeNone, nil
	}
	return ipc.ParseMode(c.InitialMode)
}

// Backoff returns the listener retry schedule.
func (c *Config) Backoff() *retry.Backoff {
	delay := c.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	mult := c.RetryMultiplier
	if mult < 1 {
		mult = DefaultRetryMultiplier
	}
	maxDelay := c.RetryMaxDelay
	if mult == 1 || maxDelay < delay {
		maxDelay = delay
	}
	return &retry.Backoff{
		InitialDelay: delay,
		MaxDelay:     maxDelay,
		Multiplier:   mult,
		MaxAttempts:  c.RetryMax,
	}
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	ports := map[string]int{
		"video-port":  c.VideoPort,
		"audio-port":  c.AudioPort,
		"stream-port": c.StreamPort,
	}
	for name, p := range ports {
		if !util.ValidPort(p) {
			return fmt.Errorf("--%s %d out of range 1-65535", name, p)
		}
	}
	if c.VideoPort == c.AudioPort {
		return &dvrerr.ConfigError{
			Field:   "audio-port",
			Value:   c.AudioPort,
			Message: "must differ from --video-port",
			Hint:    "pass --audio-port with a free port",
		}
	}

	switch strings.ToLower(c.ListenerPolicy) {
	case PolicyQuiet, PolicyFatal:
	default:
		return &dvrerr.ConfigError{
			Field:   "listener-policy",
			Value:   c.ListenerPolicy,
			Message: "unknown policy",
			Hint:    "use --listener-policy=quiet or --listener-policy=fatal",
		}
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("--listener-delay must not be negative")
	}
	if c.RetryMultiplier != 0 && c.RetryMultiplier < 1 {
		return &dvrerr.ConfigError{
			Field:   "listener-backoff",
			Value:   c.RetryMultiplier,
			Message: "must be at least 1",
			Hint:    "1 keeps the delay constant",
		}
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("--listener-max-attempts must not be negative")
	}

	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("initial mode: %w", err)
	}

	if c.NoVideo && c.NoAudio {
		return fmt.Errorf("--no-video and --no-audio are mutually exclusive")
	}

	if c.OutputDir != "" {
		fi, err := os.Stat(c.OutputDir)
		if err != nil {
			return fmt.Errorf("output directory: %w", err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("output directory %q is not a directory", c.OutputDir)
		}
	}
	return nil
}
