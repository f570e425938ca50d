// Package bridge implements the raw TCP stream framing used by the RAW_TCP
// and NETWORK_STREAM transports and by the bridge client.
//
// Each packet on the wire is
//
//	magic    [4]byte  0x11 0x11 0x11 0x11
//	ts       uint64   little endian, microseconds
//	size     int32    little endian
//	payload  [size]byte
//
// The reader scans forward to the next magic after damage, so a client
// that joins mid-stream or loses bytes recovers on the following packet.
package bridge

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	dvrerr "sysdvr/internal/errors"
	"sysdvr/util"
)

const (
	magicByte  = 0x11
	magicLen   = 4
	HeaderSize = magicLen + 8 + 4
)

// MaxPayload bounds a single packet.  Larger sizes are treated as a
// corrupt header.
const MaxPayload = 4 << 20

// Packet is one timestamped payload.
type Packet struct {
	Timestamp uint64
	Data      []byte
}

// WritePacket writes p as a single frame.
func WritePacket(w io.Writer, p Packet) error {
	if len(p.Data) > MaxPayload {
		return fmt.Errorf("packet of %d bytes exceeds %d", len(p.Data), MaxPayload)
	}
	var hdr [HeaderSize]byte
	for i := 0; i < magicLen; i++ {
		hdr[i] = magicByte
	}
	binary.LittleEndian.PutUint64(hdr[4:12], p.Timestamp)
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(int32(len(p.Data))))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

// Reader decodes packets from a byte stream.  The Data of a returned
// packet is only valid until the next call to Next or Close.
type Reader struct {
	r   *bufio.Reader
	buf *[]byte
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, util.DefaultBufSize)}
}

// Next returns the next packet.  io.EOF means the stream ended between
// packets; a stream cut inside a packet is reported as
// io.ErrUnexpectedEOF.
func (r *Reader) Next() (Packet, error) {
	for {
		if err := r.sync(); err != nil {
			return Packet{}, err
		}

		var hdr [12]byte
		if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
			return Packet{}, unexpected(err)
		}
		ts := binary.LittleEndian.Uint64(hdr[0:8])
		size := int32(binary.LittleEndian.Uint32(hdr[8:12]))
		if size < 0 {
			continue
		}
		if size > MaxPayload {
			return Packet{}, fmt.Errorf("%w: payload size %d", dvrerr.ErrMalformedFrame, size)
		}

		r.release()
		r.buf = util.GetBuf(int(size))
		if _, err := io.ReadFull(r.r, *r.buf); err != nil {
			return Packet{}, unexpected(err)
		}
		return Packet{Timestamp: ts, Data: *r.buf}, nil
	}
}

// Close returns the reader's buffer to the pool.  It does not close the
// underlying stream.
func (r *Reader) Close() error {
	r.release()
	return nil
}

func (r *Reader) release() {
	if r.buf != nil {
		util.PutBuf(r.buf)
		r.buf = nil
	}
}

// sync consumes bytes until four consecutive magic bytes have been read.
func (r *Reader) sync() error {
	seen := 0
	first := true
	for seen < magicLen {
		b, err := r.r.ReadByte()
		if err != nil {
			if first {
				return err
			}
			return unexpected(err)
		}
		first = false
		if b == magicByte {
			seen++
		} else {
			seen = 0
		}
	}
	return nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
