package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the SYSDVR_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive); SYSDVR_NONBLOCKING and
// SYSDVR_PEER_CHECK also accept "0", "false", "no" to switch a default
// off.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	// Service
	if v := os.Getenv("SYSDVR_SOCKET_DIR"); v != "" {
		cfg.SocketDir = v
	}
	if v := os.Getenv("SYSDVR_MODE"); v != "" {
		cfg.InitialMode = v
	}
	if v, ok := envSwitch("SYSDVR_PEER_CHECK"); ok {
		cfg.PeerCheck = v
	}

	// Transports
	if v := envInt("SYSDVR_VIDEO_PORT"); v > 0 {
		cfg.VideoPort = v
	}
	if v := envInt("SYSDVR_AUDIO_PORT"); v > 0 {
		cfg.AudioPort = v
	}
	if v := envInt("SYSDVR_STREAM_PORT"); v > 0 {
		cfg.StreamPort = v
	}
	if envBool("SYSDVR_LOCAL_ONLY") {
		cfg.LocalOnly = true
	}
	if v, ok := envSwitch("SYSDVR_NONBLOCKING"); ok {
		cfg.NonBlocking = v
	}

	// Listener bootstrap
	if v := os.Getenv("SYSDVR_LISTENER_POLICY"); v != "" {
		cfg.ListenerPolicy = strings.ToLower(v)
	}
	if v := envInt("SYSDVR_LISTENER_DELAY_MS"); v > 0 {
		cfg.RetryDelay = time.Duration(v) * time.Millisecond
	}
	if v := envInt("SYSDVR_LISTENER_MAX_ATTEMPTS"); v > 0 {
		cfg.RetryMax = v
	}

	// Client
	if v := envInt("SYSDVR_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}

	// Output
	if v := envInt("SYSDVR_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// envSwitch reports an explicit on/off value; ok is false when the
// variable is unset or unrecognised.
func envSwitch(key string) (on, ok bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
