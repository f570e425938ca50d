package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultVideoPort and DefaultAudioPort are the RAW_TCP stream ports.
	DefaultVideoPort = 6667
	DefaultAudioPort = 6668

	// DefaultStreamPort is the NETWORK_STREAM port.
	DefaultStreamPort = 6666

	// DefaultListenerPolicy retries quietly until the port frees up.
	DefaultListenerPolicy = PolicyQuiet

	// DefaultRetryDelay is the sleep between listener attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultRetryMultiplier of 1 keeps the delay constant.
	DefaultRetryMultiplier = 1.0

	// DefaultRetryMaxDelay caps the delay when the multiplier grows it.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultConnTimeout bounds client connections to the service and
	// bridge dials.
	DefaultConnTimeout = 5 * time.Second

	// DefaultGracePeriod is how long shutdown waits for the active
	// transport to stop.
	DefaultGracePeriod = 5 * time.Second
)

// Default returns a Config populated with every default.
func Default() *Config {
	return &Config{
		VideoPort:       DefaultVideoPort,
		AudioPort:       DefaultAudioPort,
		StreamPort:      DefaultStreamPort,
		ListenerPolicy:  DefaultListenerPolicy,
		RetryDelay:      DefaultRetryDelay,
		RetryMultiplier: DefaultRetryMultiplier,
		RetryMaxDelay:   DefaultRetryMaxDelay,
		Timeout:         DefaultConnTimeout,
		NonBlocking:     true,
		PeerCheck:       true,
	}
}
