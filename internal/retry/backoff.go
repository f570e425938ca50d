// Package retry provides the backoff schedule used when an operation has
// to be repeated until the environment lets it succeed, such as binding a
// port still held by a previous instance or redialing a console that is
// not streaming yet.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError marks an error that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that [Backoff.Do] returns it at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was wrapped with [Permanent].
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

// ErrExhausted is returned once MaxAttempts have failed.
var ErrExhausted = errors.New("retry budget exhausted")

// Defaults applied to zero fields.
const (
	defaultInitial    = time.Second
	defaultMax        = 60 * time.Second
	defaultMultiplier = 2.0
)

// Backoff is a retry schedule.  The delay after attempt n is
// InitialDelay * Multiplier^(n-1), capped at MaxDelay.  A Multiplier of
// 1 gives a constant delay.
type Backoff struct {
	InitialDelay time.Duration // default 1s
	MaxDelay     time.Duration // default 60s
	Multiplier   float64       // default 2
	MaxAttempts  int           // tries including the first; 0 is unlimited
	Jitter       bool          // ±25% on every delay

	// OnRetry, when set, is told about every failure that will be
	// retried, with the delay about to be slept.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Constant returns an unlimited schedule that always waits d.
func Constant(d time.Duration) *Backoff {
	return &Backoff{InitialDelay: d, MaxDelay: d, Multiplier: 1}
}

// Exhausted reports whether attempt used up the budget.
func (b *Backoff) Exhausted(attempt int) bool {
	return b.MaxAttempts > 0 && attempt >= b.MaxAttempts
}

// Delay returns the wait that follows failed attempt (1-based), without
// jitter.
func (b *Backoff) Delay(attempt int) time.Duration {
	initial, maxDelay, mult := b.InitialDelay, b.MaxDelay, b.Multiplier
	if initial <= 0 {
		initial = defaultInitial
	}
	if maxDelay <= 0 {
		maxDelay = defaultMax
	}
	if mult <= 0 {
		mult = defaultMultiplier
	}
	if attempt < 1 {
		attempt = 1
	}

	d := float64(initial) * math.Pow(mult, float64(attempt-1))
	if d > float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(d)
}

// Wait sleeps for the delay that follows failed attempt.  It returns an
// error wrapping [ErrExhausted] when the budget is spent, and one
// wrapping ctx.Err() if ctx ends first.
func (b *Backoff) Wait(ctx context.Context, attempt int) error {
	if b.Exhausted(attempt) {
		return fmt.Errorf("%w after %d attempts", ErrExhausted, attempt)
	}

	t := time.NewTimer(b.next(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry cancelled: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// Do calls fn until it succeeds, returns a [Permanent] error, the budget
// is spent or ctx ends.  fn receives the 1-based attempt number.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}

		if b.OnRetry != nil && ctx.Err() == nil && !b.Exhausted(attempt) {
			b.OnRetry(attempt, err, b.Delay(attempt))
		}
		if werr := b.Wait(ctx, attempt); werr != nil {
			return fmt.Errorf("%w: %w", werr, err)
		}
	}
}

func (b *Backoff) next(attempt int) time.Duration {
	d := b.Delay(attempt)
	if b.Jitter {
		d = addJitter(d)
	}
	return d
}

// addJitter spreads d by ±25%, never below a millisecond.
func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
