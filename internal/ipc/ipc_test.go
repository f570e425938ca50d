package ipc

import (
	"bytes"
	"errors"
	"io"
	"testing"

	dvrerr "sysdvr/internal/errors"
)

func TestMode_WireMapping(t *testing.T) {
	want := map[Mode]uint32{
		ModeUSB:           1,
		ModeRawTCP:        2,
		ModeNone:          3,
		ModeNetworkStream: 4,
	}
	for _, m := range Modes {
		v, err := m.Wire()
		if err != nil {
			t.Fatalf("%v: %v", m, err)
		}
		if v != want[m] {
			t.Errorf("%v: wire %d, want %d", m, v, want[m])
		}
		back, ok := ModeFromWire(v)
		if !ok || back != m {
			t.Errorf("ModeFromWire(%d) = %v, %v", v, back, ok)
		}
	}
}

func TestMode_Invalid(t *testing.T) {
	if _, err := Mode(42).Wire(); err == nil {
		t.Error("expected error for out-of-range mode")
	}
	for _, v := range []uint32{0, 5, 999999} {
		if _, ok := ModeFromWire(v); ok {
			t.Errorf("wire %d should not map to a mode", v)
		}
	}
	if Mode(-1).Valid() || Mode(4).Valid() {
		t.Error("Valid accepted an out-of-range mode")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"off", ModeNone},
		{"NONE", ModeNone},
		{"usb", ModeUSB},
		{"rtsp", ModeNetworkStream},
		{" tcp ", ModeRawTCP},
		{"bridge", ModeRawTCP},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseMode("hdmi"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestMode_IsNetwork(t *testing.T) {
	for _, m := range Modes {
		want := m == ModeNetworkStream || m == ModeRawTCP
		if m.IsNetwork() != want {
			t.Errorf("%v.IsNetwork() = %v", m, m.IsNetwork())
		}
	}
}

func TestResult_Parts(t *testing.T) {
	r := MakeResult(ModuleDVR, DescInvalidMode)
	if r.Succeeded() {
		t.Fatal("non-zero result reported success")
	}
	if r.Module() != ModuleDVR || r.Description() != DescInvalidMode {
		t.Errorf("module 0x%x desc %d", r.Module(), r.Description())
	}
	if !ResultSuccess.Succeeded() {
		t.Error("zero result should succeed")
	}
}

func TestFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRequest(&buf, Request{Command: CmdSetMode, Arg: 4}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != FrameSize {
		t.Fatalf("request frame is %d bytes", buf.Len())
	}
	want := []byte{102, 0, 0, 0, 4, 0, 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("frame % x, want % x", buf.Bytes(), want)
	}

	req, err := ReadRequest(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if req.Command != CmdSetMode || req.Arg != 4 {
		t.Errorf("got %+v", req)
	}

	if err := WriteResponse(&buf, Response{Result: 0, Value: Version}); err != nil {
		t.Fatal(err)
	}
	resp, err := ReadResponse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Value != Version || !resp.Result.Succeeded() {
		t.Errorf("got %+v", resp)
	}
}

func TestReadRequest_Short(t *testing.T) {
	_, err := ReadRequest(bytes.NewReader([]byte{100, 0, 0}))
	if !errors.Is(err, dvrerr.ErrMalformedFrame) {
		t.Errorf("expected malformed frame, got %v", err)
	}

	_, err = ReadRequest(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("expected io.EOF on empty stream, got %v", err)
	}
}
