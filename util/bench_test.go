package util

import "testing"

// BenchmarkBufPool compares pooled packet buffers with fresh allocation
// at a typical video packet size.
func BenchmarkBufPool(b *testing.B) {
	const size = 12 * 1024
	b.Run("pool", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			buf := GetBuf(size)
			(*buf)[size-1] = 1
			PutBuf(buf)
		}
	})
	b.Run("alloc", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			buf := make([]byte, size)
			buf[size-1] = 1
		}
	})
}
