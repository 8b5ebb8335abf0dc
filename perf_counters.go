// Package matprod hardware counter integration for cache-miss measurement
package matprod

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Event is a hardware event counted over the measurement window.
type Event int

const (
	// EventL1DataMiss counts L1 data cache read misses
	EventL1DataMiss Event = iota
	// EventL2DataMiss counts L2 data cache misses
	EventL2DataMiss
)

// DefaultEvents are the events every measurement window requests.
var DefaultEvents = []Event{EventL1DataMiss, EventL2DataMiss}

// String returns the short label used in reports
func (e Event) String() string {
	switch e {
	case EventL1DataMiss:
		return "L1 DCM"
	case EventL2DataMiss:
		return "L2 DCM"
	default:
		return "unknown"
	}
}

// MarshalText lets events appear by name in JSON logs
func (e Event) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses a label written by MarshalText
func (e *Event) UnmarshalText(text []byte) error {
	for _, ev := range DefaultEvents {
		if ev.String() == string(text) {
			*e = ev
			return nil
		}
	}
	return fmt.Errorf("unknown event %q", text)
}

// Reading is the count for one event. Valid is false when the event could
// not be added, started or read; Value is meaningless in that case.
type Reading struct {
	Event Event  `json:"event"`
	Value uint64 `json:"value"`
	Valid bool   `json:"valid"`
}

// Backend is the process-wide counter subsystem. Init is called once,
// before any event set is created.
type Backend interface {
	Init() error
	NewEventSet() (EventSet, error)
}

// EventSet is a group of counters measured together. Stop returns one
// value per successfully added event, in the order they were added. Close
// removes every event and destroys the set; it is safe after a failed
// Start or Stop.
type EventSet interface {
	Add(ev Event) error
	Start() error
	Stop() ([]uint64, error)
	Close() error
}

// counterWindow scopes one event set to one measurement window. Failures
// after initialization are logged and leave the affected readings invalid.
type counterWindow struct {
	log       zerolog.Logger
	set       EventSet
	requested []Event
	added     []Event
	started   bool
}

// openWindow initializes b, creates an event set and adds events to it.
// An Init failure is returned only when strict is set; otherwise the window
// is stubbed out and every reading it produces is invalid. The caller must
// call close on the returned window.
func openWindow(b Backend, events []Event, strict bool, log zerolog.Logger) (*counterWindow, error) {
	w := &counterWindow{
		log:       log,
		requested: events,
	}

	if b == nil {
		b = unsupportedBackend{}
	}

	if err := b.Init(); err != nil {
		if strict {
			if !IsCounterError(err) {
				err = NewCounterSubsystemError("Init", "counter initialization failed", err)
			}
			return nil, err
		}
		log.Warn().Err(err).Msg("counter subsystem unavailable, cache-miss counts will not be reported")
		return w, nil
	}

	set, err := b.NewEventSet()
	if err != nil {
		log.Warn().Err(err).Msg("create event set")
		return w, nil
	}
	w.set = set

	for _, ev := range events {
		if err := set.Add(ev); err != nil {
			log.Warn().Err(err).Stringer("event", ev).Msg("add event")
			continue
		}
		w.added = append(w.added, ev)
	}

	return w, nil
}

func (w *counterWindow) start() {
	if w.set == nil || len(w.added) == 0 {
		return
	}
	if err := w.set.Start(); err != nil {
		w.log.Warn().Err(err).Msg("start counters")
		return
	}
	w.started = true
}

// stop ends the window and returns one reading per requested event.
func (w *counterWindow) stop() []Reading {
	readings := make([]Reading, len(w.requested))
	for i, ev := range w.requested {
		readings[i] = Reading{Event: ev}
	}
	if !w.started {
		return readings
	}
	w.started = false

	values, err := w.set.Stop()
	if err != nil {
		w.log.Warn().Err(err).Msg("stop counters")
		return readings
	}

	for i, ev := range w.added {
		if i >= len(values) {
			break
		}
		for j := range readings {
			if readings[j].Event == ev {
				readings[j].Value = values[i]
				readings[j].Valid = true
			}
		}
	}
	return readings
}

func (w *counterWindow) close() {
	if w.set == nil {
		return
	}
	if err := w.set.Close(); err != nil {
		w.log.Warn().Err(err).Msg("destroy event set")
	}
	w.set = nil
}

// unsupportedBackend is used where the host has no counter interface.
type unsupportedBackend struct{}

func (unsupportedBackend) Init() error {
	return ErrCountersUnsupported
}

func (unsupportedBackend) NewEventSet() (EventSet, error) {
	return nil, ErrCountersUnsupported
}
