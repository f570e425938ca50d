package util

import "sync"

// BufPool provides reusable payload buffers for the stream bridge so
// that per-packet reads do not allocate.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer of at least n bytes.  Callers must return it
// with [PutBuf] when finished.
func GetBuf(n int) *[]byte {
	buf := BufPool.Get().(*[]byte)
	if cap(*buf) < n {
		BufPool.Put(buf)
		grown := make([]byte, n)
		return &grown
	}
	*buf = (*buf)[:n]
	return buf
}

// PutBuf returns a buffer to the pool for reuse.  Oversized buffers are
// dropped so the pool does not pin large packets.
func PutBuf(buf *[]byte) {
	if buf == nil || cap(*buf) > 4*DefaultBufSize {
		return
	}
	*buf = (*buf)[:cap(*buf)]
	BufPool.Put(buf)
}
