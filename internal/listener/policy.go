package listener

import (
	"context"
	"fmt"
	"os"
	"time"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/ipc"
	"sysdvr/internal/retry"
)

// Policy decides what happens after a failed attempt.  A nil return
// retries; anything else is returned from [Bootstrap.Listen].
type Policy interface {
	Failed(ctx context.Context, cfg Config, attempt int, err *dvrerr.ListenerError) error
}

// PolicyFunc adapts a function to [Policy].
type PolicyFunc func(ctx context.Context, cfg Config, attempt int, err *dvrerr.ListenerError) error

// Failed calls f.
func (f PolicyFunc) Failed(ctx context.Context, cfg Config, attempt int, err *dvrerr.ListenerError) error {
	return f(ctx, cfg, attempt, err)
}

// DefaultRetryDelay is the pause between quiet retries.
const DefaultRetryDelay = 500 * time.Millisecond

// QuietRetry sleeps and retries without terminating the process.  It
// survives startup races such as a port still held by a just-exited
// previous instance.
type QuietRetry struct {
	// Backoff schedules the pauses.  Nil means an unbounded constant
	// DefaultRetryDelay.
	Backoff *retry.Backoff
}

// Failed waits for the next slot.  It only gives up when the backoff has
// a MaxAttempts budget that is spent or ctx ends.
func (p *QuietRetry) Failed(ctx context.Context, _ Config, attempt int, err *dvrerr.ListenerError) error {
	b := p.Backoff
	if b == nil {
		b = retry.Constant(DefaultRetryDelay)
	}
	if werr := b.Wait(ctx, attempt); werr != nil {
		return dvrerr.Join(err, werr)
	}
	return nil
}

// FailureModule is the module part of fatal diagnostic codes.  The
// caller's DebugTag is OR'ed into it.
const FailureModule = 0xA0

// DiagnosticCode encodes the caller tag and failing step.
func DiagnosticCode(tag uint32, step dvrerr.Step) ipc.Result {
	return ipc.MakeResult(FailureModule|tag, uint32(step))
}

// FatalOnFailure halts on the first failure with a diagnostic code.
type FatalOnFailure struct {
	// Halt terminates the process.  Nil prints the code to stderr and
	// exits; tests inject a recorder.
	Halt func(code ipc.Result, err error)
}

// Failed halts.  If Halt returns, the failure is reported to the caller
// instead of retried.
func (p *FatalOnFailure) Failed(_ context.Context, cfg Config, _ int, err *dvrerr.ListenerError) error {
	code := DiagnosticCode(cfg.DebugTag, err.Step)
	halt := p.Halt
	if halt == nil {
		halt = exitProcess
	}
	halt(code, err)
	return fmt.Errorf("fatal listener failure %s: %w", code, err)
}

// ExitStatus is the process exit status used by the default halt.
const ExitStatus = 70

func exitProcess(code ipc.Result, err error) {
	fmt.Fprintf(os.Stderr, "sysdvr: fatal: %v (diagnostic %s)\n", err, code)
	os.Exit(ExitStatus)
}
