package util

import "sync"

// ChunkSize is the read-chunk size used by the reply accumulation loop.
// Replies are small JSON objects, so a modest chunk keeps latency low.
const ChunkSize = 1024

// chunkPool recycles read buffers across commands, reducing GC
// pressure in long interactive sessions.
var chunkPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, ChunkSize)
		return &buf
	},
}

// GetChunk retrieves a read buffer from the pool.  Callers must return
// it with [PutChunk] when finished.
func GetChunk() *[]byte {
	return chunkPool.Get().(*[]byte)
}

// PutChunk returns a buffer to the pool for reuse.
func PutChunk(buf *[]byte) {
	if buf == nil {
		return
	}
	chunkPool.Put(buf)
}
