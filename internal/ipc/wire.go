package ipc

import (
	"encoding/binary"
	"fmt"
	"io"

	dvrerr "sysdvr/internal/errors"
)

// Command identifies a service request.
type Command uint32

const (
	CmdGetVersion Command = 100
	CmdGetMode    Command = 101
	CmdSetMode    Command = 102
)

func (c Command) String() string {
	switch c {
	case CmdGetVersion:
		return "GET_VERSION"
	case CmdGetMode:
		return "GET_MODE"
	case CmdSetMode:
		return "SET_MODE"
	default:
		return fmt.Sprintf("CMD(%d)", uint32(c))
	}
}

// FrameSize is the size of both request and response frames.
const FrameSize = 8

// Request is a command plus its argument (zero unless SET_MODE).
type Request struct {
	Command Command
	Arg     uint32
}

// Response is the result code plus an output value (zero when unused).
type Response struct {
	Result Result
	Value  uint32
}

// WriteRequest writes req as one frame.
func WriteRequest(w io.Writer, req Request) error {
	var buf [FrameSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(req.Command))
	binary.LittleEndian.PutUint32(buf[4:8], req.Arg)
	_, err := w.Write(buf[:])
	return err
}

// ReadRequest reads one request frame.  A clean EOF before the first byte
// is returned as io.EOF; a partial frame is [dvrerr.ErrMalformedFrame].
func ReadRequest(r io.Reader) (Request, error) {
	var buf [FrameSize]byte
	if err := readFrame(r, buf[:]); err != nil {
		return Request{}, err
	}
	return Request{
		Command: Command(binary.LittleEndian.Uint32(buf[0:4])),
		Arg:     binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// WriteResponse writes resp as one frame.
func WriteResponse(w io.Writer, resp Response) error {
	var buf [FrameSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(resp.Result))
	binary.LittleEndian.PutUint32(buf[4:8], resp.Value)
	_, err := w.Write(buf[:])
	return err
}

// ReadResponse reads one response frame.
func ReadResponse(r io.Reader) (Response, error) {
	var buf [FrameSize]byte
	if err := readFrame(r, buf[:]); err != nil {
		return Response{}, err
	}
	return Response{
		Result: Result(binary.LittleEndian.Uint32(buf[0:4])),
		Value:  binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

func readFrame(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: short read", dvrerr.ErrMalformedFrame)
	}
	return err
}
