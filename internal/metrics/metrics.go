// Package metrics provides lightweight, lock-free counters for tracking
// runtime statistics of the sysdvr service.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for the service process.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	clientsActive   atomic.Int64
	clientsTotal    atomic.Int64
	commandsTotal   atomic.Int64
	dispatchErrors  atomic.Int64
	modeSwitches    atomic.Int64
	listenerRetries atomic.Int64
	streamClients   atomic.Int64
	packetsSent     atomic.Int64
	bytesSent       atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Command interface ────────────────────────────────────────────────

// ClientConnected increments both the active and total client counters.
func (c *Collector) ClientConnected() {
	if c == nil {
		return
	}
	c.clientsActive.Add(1)
	c.clientsTotal.Add(1)
}

// ClientDisconnected decrements the active client counter.
func (c *Collector) ClientDisconnected() {
	if c == nil {
		return
	}
	c.clientsActive.Add(-1)
}

// ActiveClients returns the number of open command connections.
func (c *Collector) ActiveClients() int64 {
	if c == nil {
		return 0
	}
	return c.clientsActive.Load()
}

// CommandHandled counts one dispatched command; failed marks a non-zero
// result code.
func (c *Collector) CommandHandled(failed bool) {
	if c == nil {
		return
	}
	c.commandsTotal.Add(1)
	if failed {
		c.dispatchErrors.Add(1)
	}
}

// Commands returns the total number of commands handled.
func (c *Collector) Commands() int64 {
	if c == nil {
		return 0
	}
	return c.commandsTotal.Load()
}

// DispatchErrors returns how many commands returned a failure code.
func (c *Collector) DispatchErrors() int64 {
	if c == nil {
		return 0
	}
	return c.dispatchErrors.Load()
}

// ModeSwitched records an effective transport mode change.
func (c *Collector) ModeSwitched() {
	if c == nil {
		return
	}
	c.modeSwitches.Add(1)
}

// ModeSwitches returns the number of effective mode changes.
func (c *Collector) ModeSwitches() int64 {
	if c == nil {
		return 0
	}
	return c.modeSwitches.Load()
}

// ── Transports ───────────────────────────────────────────────────────

// ListenerRetry records a failed listener bootstrap attempt.
func (c *Collector) ListenerRetry() {
	if c == nil {
		return
	}
	c.listenerRetries.Add(1)
}

// ListenerRetries returns the total failed bootstrap attempts.
func (c *Collector) ListenerRetries() int64 {
	if c == nil {
		return 0
	}
	return c.listenerRetries.Load()
}

// StreamClientAccepted records a transport client connection.
func (c *Collector) StreamClientAccepted() {
	if c == nil {
		return
	}
	c.streamClients.Add(1)
}

// PacketSent records one bridge packet of n payload bytes.
func (c *Collector) PacketSent(n int) {
	if c == nil {
		return
	}
	c.packetsSent.Add(1)
	c.bytesSent.Add(int64(n))
}

// PacketsSent returns the number of bridge packets written.
func (c *Collector) PacketsSent() int64 {
	if c == nil {
		return 0
	}
	return c.packetsSent.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError stores the most recent error message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	ClientsActive    int64  `json:"clients_active"`
	ClientsTotal     int64  `json:"clients_total"`
	Commands         int64  `json:"commands"`
	DispatchErrors   int64  `json:"dispatch_errors"`
	ModeSwitches     int64  `json:"mode_switches"`
	ListenerRetries  int64  `json:"listener_retries"`
	StreamClients    int64  `json:"stream_clients"`
	PacketsSent      int64  `json:"packets_sent"`
	BytesSent        int64  `json:"bytes_sent"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Second).String(),
		ClientsActive:   c.clientsActive.Load(),
		ClientsTotal:    c.clientsTotal.Load(),
		Commands:        c.commandsTotal.Load(),
		DispatchErrors:  c.dispatchErrors.Load(),
		ModeSwitches:    c.modeSwitches.Load(),
		ListenerRetries: c.listenerRetries.Load(),
		StreamClients:   c.streamClients.Load(),
		PacketsSent:     c.packetsSent.Load(),
		BytesSent:       c.bytesSent.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
