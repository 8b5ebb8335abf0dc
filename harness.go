package matprod

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Sample is the measurement produced by one Harness.Measure call.
type Sample struct {
	Operation Operation     `json:"operation"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Preview   []float64     `json:"preview"`
	Counters  []Reading     `json:"counters"`
	Host      HostInfo      `json:"host"`
	Timestamp time.Time     `json:"timestamp"`
}

// Seconds returns the kernel's elapsed wall-clock time in seconds.
func (s *Sample) Seconds() float64 {
	return s.Elapsed.Seconds()
}

// Reading returns the reading for ev, or an invalid reading if ev was not
// requested.
func (s *Sample) Reading(ev Event) Reading {
	for _, r := range s.Counters {
		if r.Event == ev {
			return r
		}
	}
	return Reading{Event: ev}
}

// Harness runs one operation inside a counter measurement window.
type Harness struct {
	// Backend is the counter subsystem. Nil means counters are unsupported.
	Backend Backend

	// Events are counted over the window; DefaultEvents when empty.
	Events []Event

	// RequireCounters turns a Backend.Init failure into an error.
	RequireCounters bool

	// Cold flushes the caches before the window opens.
	Cold bool

	Logger zerolog.Logger
}

// NewHarness creates a harness for cfg's run options.
func NewHarness(cfg Config, backend Backend, log zerolog.Logger) *Harness {
	return &Harness{
		Backend:         backend,
		Events:          DefaultEvents,
		RequireCounters: cfg.RequireCounters,
		Cold:            cfg.Cold,
		Logger:          log,
	}
}

// Measure validates op, opens the counter window, runs op once and closes
// the window. Counters start before dispatch and stop after it, so the
// counts cover operand allocation and initialization as well as the kernel;
// Elapsed covers only the kernel call.
//
// The goroutine is locked to its OS thread for the whole call: perf events
// count only the thread that opened them.
//
// Counter failures other than a strict-mode Init failure are logged and
// leave the affected readings invalid. The event set is released on every
// return path.
func (h *Harness) Measure(op Operation) (*Sample, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	log := h.Logger.With().Stringer("op", op).Logger()
	if op.Kernel == KernelBlock {
		ws := BlockWorkingSet(op.BlockSize)
		log.Debug().
			Int("working_set_bytes", ws).
			Bool("fits_l1", ws <= L1CacheSize).
			Bool("fits_l2", ws <= L2CacheSize).
			Bool("fits_l3", ws <= L3CacheSize).
			Msg("block working set")
	}

	if h.Cold {
		log.Debug().Int("bytes", ColdFlushBytes).Msg("flushing caches")
		FlushCaches(ColdFlushBytes)
	}

	events := h.Events
	if len(events) == 0 {
		events = DefaultEvents
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, err := openWindow(h.Backend, events, h.RequireCounters, log)
	if err != nil {
		return nil, err
	}
	defer w.close()

	w.start()
	res, err := Run(op)
	counters := w.stop()
	if err != nil {
		return nil, err
	}

	sample := &Sample{
		Operation: op,
		Elapsed:   res.Elapsed,
		Preview:   res.Preview,
		Counters:  counters,
		Host:      DetectHost(),
		Timestamp: time.Now(),
	}

	log.Debug().
		Dur("elapsed", sample.Elapsed).
		Str("cpu", sample.Host.Features).
		Msg("measurement complete")

	return sample, nil
}
