package matprod

import (
	"runtime"
)

// FlushCaches evicts the CPU caches by writing every cache line of a
// freshly allocated buffer of size bytes twice with different patterns,
// then releases the buffer. Run it before a measurement to start cold.
func FlushCaches(size int) {
	data := make([]byte, size)

	// Touch every cache line so the pages are physically backed
	for i := 0; i < len(data); i += CacheLineSize {
		data[i] = byte(i % 256)
	}

	// Second pass with a different pattern to force replacement
	for i := 0; i < len(data); i += CacheLineSize {
		data[i] = byte((i * 7) % 256)
	}

	runtime.KeepAlive(data)
	runtime.GC()
}
