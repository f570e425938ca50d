// Package errors provides domain-specific error types for sysdvr.
//
// Low-level OS and socket failures are translated into these types at the
// boundary of the command interface and the listener bootstrap, so callers
// only ever see one of three conditions: the service is unavailable, the
// service rejected a command, or a listener could not be created.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrNotFound           = errors.New("service not registered")
	ErrClosed             = errors.New("handle is closed")
	ErrDispatch           = errors.New("dispatch failed")
	ErrMalformedFrame     = errors.New("malformed frame")
	ErrPermission         = errors.New("peer not permitted")
)

// ── Structured error types ───────────────────────────────────────────

// ServiceError reports that a connection to a named service could not be
// established or was lost.  It always matches [ErrServiceUnavailable].
type ServiceError struct {
	Op   string // "connect", "send", "recv"
	Name string // service name
	Err  error  // underlying error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Name, ErrServiceUnavailable, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is makes every ServiceError match ErrServiceUnavailable.
func (e *ServiceError) Is(target error) bool { return target == ErrServiceUnavailable }

// DispatchError carries a non-zero result code returned by the service.
// The code is opaque at this layer.
type DispatchError struct {
	Command uint32
	Code    uint32
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("command %d: %v: result 0x%x", e.Command, ErrDispatch, e.Code)
}

// Is makes every DispatchError match ErrDispatch.
func (e *DispatchError) Is(target error) bool { return target == ErrDispatch }

// Step identifies which stage of the listener bootstrap failed.  The
// numeric values double as the description part of fatal diagnostic codes.
type Step int

const (
	StepSocket Step = 1 // socket creation
	StepOption Step = 2 // non-blocking / SO_REUSEADDR
	StepBind   Step = 3
	StepListen Step = 4
)

func (s Step) String() string {
	switch s {
	case StepSocket:
		return "socket"
	case StepOption:
		return "setsockopt"
	case StepBind:
		return "bind"
	case StepListen:
		return "listen"
	default:
		return "unknown"
	}
}

// ListenerError represents a failed listener bootstrap attempt.
type ListenerError struct {
	Step Step
	Addr string
	Err  error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s %s: %v", e.Step, e.Addr, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Unavailable wraps err as a ServiceError.
func Unavailable(op, name string, err error) *ServiceError {
	return &ServiceError{Op: op, Name: name, Err: err}
}

// Dispatch returns a DispatchError, or nil when code is zero.
func Dispatch(command, code uint32) error {
	if code == 0 {
		return nil
	}
	return &DispatchError{Command: command, Code: code}
}

// ── Classification helpers ───────────────────────────────────────────

// IsUnavailable reports whether err means the service could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// ResultCode extracts the service result code from err.  It returns 0 for
// nil and ok=false when err did not come from the service.
func ResultCode(err error) (code uint32, ok bool) {
	if err == nil {
		return 0, true
	}
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return 0, false
}

// FailedStep returns the bootstrap step recorded in err, if any.
func FailedStep(err error) (Step, bool) {
	var le *ListenerError
	if errors.As(err, &le) {
		return le.Step, true
	}
	return 0, false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
