package listener

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/internal/ipc"
	"sysdvr/internal/metrics"
	"sysdvr/internal/retry"
	"sysdvr/util"
)

// occupy binds a plain listener on a loopback port and returns it.
func occupy(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestAttempt_LocalOnly(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	ln, err := Attempt(Config{Port: port, LocalOnly: true, NonBlocking: true})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	if !addr.IP.IsLoopback() {
		t.Errorf("bound to %v, want loopback", addr.IP)
	}
	if addr.Port != port {
		t.Errorf("bound port %d, want %d", addr.Port, port)
	}

	// The socket must already be listening: a dial completes without
	// anyone calling Accept yet.
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	accepted := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			c.Close()
		}
		accepted <- err
	}()
	select {
	case err := <-accepted:
		if err != nil {
			t.Fatalf("accept: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not return")
	}
}

func TestAttempt_AllInterfaces(t *testing.T) {
	ln, err := Attempt(Config{Port: 0})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	defer ln.Close()

	if ip := ln.Addr().(*net.TCPAddr).IP; !ip.IsUnspecified() {
		t.Errorf("bound to %v, want wildcard", ip)
	}
}

func TestAttempt_BindConflict(t *testing.T) {
	held, port := occupy(t)
	defer held.Close()

	ln, err := Attempt(Config{Port: port, LocalOnly: true})
	if err == nil {
		ln.Close()
		t.Fatal("expected bind failure on an occupied port")
	}
	step, ok := dvrerr.FailedStep(err)
	if !ok || step != dvrerr.StepBind {
		t.Errorf("step = %v (%v), want bind: %v", step, ok, err)
	}
}

func TestListen_QuietRetryRecovers(t *testing.T) {
	held, port := occupy(t)
	defer held.Close()

	const releaseAfter = 3
	var attempts atomic.Int32
	quiet := &QuietRetry{Backoff: retry.Constant(10 * time.Millisecond)}
	policy := PolicyFunc(func(ctx context.Context, cfg Config, n int, err *dvrerr.ListenerError) error {
		attempts.Add(1)
		if err.Step != dvrerr.StepBind {
			t.Errorf("attempt %d failed at %v", n, err.Step)
		}
		if n == releaseAfter {
			held.Close()
		}
		return quiet.Failed(ctx, cfg, n, err)
	})

	m := metrics.New()
	b := &Bootstrap{Policy: policy, Metrics: m}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ln, err := b.Listen(ctx, Config{Port: port, LocalOnly: true})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	if got := attempts.Load(); got != releaseAfter {
		t.Errorf("policy consulted %d times, want %d", got, releaseAfter)
	}
	if m.ListenerRetries() != releaseAfter {
		t.Errorf("metrics retries = %d", m.ListenerRetries())
	}
}

func TestListen_QuietRetryBudget(t *testing.T) {
	held, port := occupy(t)
	defer held.Close()

	policy := &QuietRetry{Backoff: &retry.Backoff{
		InitialDelay: time.Millisecond,
		Multiplier:   1,
		MaxAttempts:  2,
	}}
	_, err := Create(context.Background(), Config{Port: port, LocalOnly: true}, policy)
	if err == nil {
		t.Fatal("expected failure once the budget is spent")
	}
	if !dvrerr.Is(err, retry.ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	if step, _ := dvrerr.FailedStep(err); step != dvrerr.StepBind {
		t.Errorf("step = %v, want bind", step)
	}
}

func TestListen_ContextCancel(t *testing.T) {
	held, port := occupy(t)
	defer held.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Create(ctx, Config{Port: port, LocalOnly: true}, &QuietRetry{})
	if err == nil {
		t.Fatal("expected cancellation")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation took too long")
	}
}

func TestListen_FatalHalts(t *testing.T) {
	held, port := occupy(t)
	defer held.Close()

	var halted []ipc.Result
	policy := &FatalOnFailure{Halt: func(code ipc.Result, _ error) {
		halted = append(halted, code)
	}}

	const tag = 2
	_, err := Create(context.Background(), Config{Port: port, LocalOnly: true, DebugTag: tag}, policy)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(halted) != 1 {
		t.Fatalf("halt called %d times, want 1", len(halted))
	}
	code := halted[0]
	if code.Module() != FailureModule|tag {
		t.Errorf("module 0x%x, want 0x%x", code.Module(), FailureModule|tag)
	}
	if code.Description() != uint32(dvrerr.StepBind) {
		t.Errorf("description %d, want bind", code.Description())
	}
}

func TestDiagnosticCode(t *testing.T) {
	tests := []struct {
		tag  uint32
		step dvrerr.Step
	}{
		{0, dvrerr.StepSocket},
		{1, dvrerr.StepOption},
		{2, dvrerr.StepBind},
		{3, dvrerr.StepListen},
	}
	for _, tt := range tests {
		code := DiagnosticCode(tt.tag, tt.step)
		if code.Succeeded() {
			t.Errorf("tag %d step %v: zero code", tt.tag, tt.step)
		}
		if code.Module() != 0xA0|tt.tag || code.Description() != uint32(tt.step) {
			t.Errorf("tag %d step %v: got %s", tt.tag, tt.step, code)
		}
	}
}

func TestConfig_Addr(t *testing.T) {
	if got := (Config{Port: 6667, LocalOnly: true}).Addr(); got != "127.0.0.1:6667" {
		t.Errorf("got %q", got)
	}
	if got := (Config{Port: 6668}).Addr(); got != "0.0.0.0:6668" {
		t.Errorf("got %q", got)
	}
}
