package errors

import (
	"fmt"
	"io"
	"syscall"
	"testing"
)

func TestServiceError_Format(t *testing.T) {
	err := Unavailable("connect", "sysdvr", ErrNotFound)
	want := "connect sysdvr: service unavailable: service not registered"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestServiceError_Matches(t *testing.T) {
	err := fmt.Errorf("client: %w", Unavailable("recv", "sysdvr", io.EOF))
	if !IsUnavailable(err) {
		t.Error("wrapped ServiceError should match ErrServiceUnavailable")
	}
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
	if IsUnavailable(io.EOF) {
		t.Error("plain EOF is not a service error")
	}
}

func TestDispatch(t *testing.T) {
	if Dispatch(102, 0) != nil {
		t.Fatal("zero code must be success")
	}

	err := Dispatch(102, 0x1234)
	if !Is(err, ErrDispatch) {
		t.Errorf("expected ErrDispatch, got %v", err)
	}
	if IsUnavailable(err) {
		t.Error("dispatch failure is not unavailability")
	}
	code, ok := ResultCode(fmt.Errorf("wrap: %w", err))
	if !ok || code != 0x1234 {
		t.Errorf("ResultCode = 0x%x, %v", code, ok)
	}
}

func TestResultCode_Foreign(t *testing.T) {
	if _, ok := ResultCode(io.EOF); ok {
		t.Error("non-dispatch error should not yield a code")
	}
	if code, ok := ResultCode(nil); !ok || code != 0 {
		t.Errorf("nil: got 0x%x, %v", code, ok)
	}
}

func TestListenerError(t *testing.T) {
	tests := []struct {
		step Step
		want string
	}{
		{StepSocket, "listener socket 0.0.0.0:6667: address in use"},
		{StepOption, "listener setsockopt 0.0.0.0:6667: address in use"},
		{StepBind, "listener bind 0.0.0.0:6667: address in use"},
		{StepListen, "listener listen 0.0.0.0:6667: address in use"},
	}
	for _, tt := range tests {
		t.Run(tt.step.String(), func(t *testing.T) {
			err := &ListenerError{Step: tt.step, Addr: "0.0.0.0:6667", Err: syscall.EADDRINUSE}
			if got := err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			step, ok := FailedStep(fmt.Errorf("outer: %w", err))
			if !ok || step != tt.step {
				t.Errorf("FailedStep = %v, %v", step, ok)
			}
			if !Is(err, syscall.EADDRINUSE) {
				t.Error("should unwrap to errno")
			}
		})
	}
}

func TestConfigError_Format(t *testing.T) {
	err := &ConfigError{
		Field:   "video-port",
		Value:   70000,
		Message: "out of range 1-65535",
		Hint:    "use a port between 1 and 65535",
	}
	want := "config: --video-port=70000: out of range 1-65535\n  hint: use a port between 1 and 65535"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
