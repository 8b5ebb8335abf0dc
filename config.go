// Package matprod configuration constants
package matprod

// Cache sizes for different levels (in bytes)
const (
	// L1 data cache size per core (typical for modern CPUs)
	L1CacheSize = 32 * 1024 // 32KB

	// L2 cache size per core (typical for modern CPUs)
	L2CacheSize = 256 * 1024 // 256KB

	// L3 cache size (shared, typical for modern CPUs)
	L3CacheSize = 8 * 1024 * 1024 // 8MB

	// Cache line size in bytes
	CacheLineSize = 64
)

// Reporting and cold-cache parameters
const (
	// PreviewWidth is the number of row-0 values printed after a run
	PreviewWidth = 10

	// ColdFlushBytes is the buffer touched by FlushCaches, well above
	// the last-level cache of most hosts
	ColdFlushBytes = 64 * 1024 * 1024 // 64MB

	// DefaultLogDir is where session logs go when no directory is given
	DefaultLogDir = "benchmark_logs"
)

// elementSize is the width of one matrix element in bytes.
const elementSize = 8

// Config describes a single measured run.
type Config struct {
	// Operation selects the kernel and its parameters.
	Operation Operation

	// RequireCounters makes a counter subsystem that fails to initialize
	// a fatal error instead of marking the sample unavailable.
	RequireCounters bool

	// L2RawEvent, when non-zero, is a raw PMU event code used for the
	// L2 data miss counter instead of the portable last-level stand-in.
	L2RawEvent uint64

	// Cold flushes the caches before the measurement window opens.
	Cold bool
}

// BlockWorkingSet returns the bytes touched between reuses of the A, B and
// C tiles of the blocked kernel for the given block size.
func BlockWorkingSet(blockSize int) int {
	return 3 * blockSize * blockSize * elementSize
}
