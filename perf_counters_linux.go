//go:build linux
// +build linux

// Package matprod provides the Linux perf_event_open counter backend
package matprod

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// cacheConfig creates a cache event configuration
func cacheConfig(cache, op, result int) uint64 {
	return uint64(cache) | (uint64(op) << 8) | (uint64(result) << 16)
}

// perfBackend counts events for the calling thread with perf_event_open.
type perfBackend struct {
	l2Raw uint64
}

// NewHostBackend returns the counter backend for this platform. A non-zero
// l2RawEvent is programmed as a raw PMU event for EventL2DataMiss; otherwise
// the generic last-level cache read-miss event stands in for it.
func NewHostBackend(l2RawEvent uint64) Backend {
	return &perfBackend{l2Raw: l2RawEvent}
}

func newAttr(typ uint32, config uint64) unix.PerfEventAttr {
	return unix.PerfEventAttr{
		Type:   typ,
		Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		Config: config,
		Bits:   unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}
}

// Init checks that perf_event_open is usable by opening and closing a
// software task-clock event.
func (b *perfBackend) Init() error {
	attr := newAttr(unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_TASK_CLOCK)
	attr.Bits |= unix.PerfBitDisabled

	fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return NewCounterSubsystemError("Init", "perf_event_open unavailable", err)
	}
	unix.Close(fd)
	return nil
}

func (b *perfBackend) NewEventSet() (EventSet, error) {
	return &perfEventSet{backend: b, leader: -1}, nil
}

func (b *perfBackend) attrFor(ev Event) (unix.PerfEventAttr, error) {
	switch ev {
	case EventL1DataMiss:
		return newAttr(unix.PERF_TYPE_HW_CACHE, cacheConfig(
			unix.PERF_COUNT_HW_CACHE_L1D,
			unix.PERF_COUNT_HW_CACHE_OP_READ,
			unix.PERF_COUNT_HW_CACHE_RESULT_MISS)), nil
	case EventL2DataMiss:
		if b.l2Raw != 0 {
			return newAttr(unix.PERF_TYPE_RAW, b.l2Raw), nil
		}
		return newAttr(unix.PERF_TYPE_HW_CACHE, cacheConfig(
			unix.PERF_COUNT_HW_CACHE_LL,
			unix.PERF_COUNT_HW_CACHE_OP_READ,
			unix.PERF_COUNT_HW_CACHE_RESULT_MISS)), nil
	default:
		return unix.PerfEventAttr{}, NewCounterOperationError("Add", "unknown event", nil)
	}
}

// perfEventSet is a perf event group. The first added event is the group
// leader and is opened disabled; the others follow its enable state.
type perfEventSet struct {
	backend *perfBackend
	leader  int
	fds     []int
}

func (s *perfEventSet) Add(ev Event) error {
	attr, err := s.backend.attrFor(ev)
	if err != nil {
		return err
	}
	return s.addAttr(attr, ev.String())
}

// addAttr opens attr as a member of the group, or as its leader if the
// group is empty.
func (s *perfEventSet) addAttr(attr unix.PerfEventAttr, name string) error {
	if s.leader < 0 {
		attr.Bits |= unix.PerfBitDisabled
	}

	fd, err := unix.PerfEventOpen(&attr, 0, -1, s.leader, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return NewCounterOperationError("Add", "failed to open perf event "+name, err)
	}

	if s.leader < 0 {
		s.leader = fd
	}
	s.fds = append(s.fds, fd)
	return nil
}

func (s *perfEventSet) Start() error {
	if s.leader < 0 {
		return NewCounterOperationError("Start", "event set is empty", nil)
	}
	if err := unix.IoctlSetInt(s.leader, unix.PERF_EVENT_IOC_RESET, unix.PERF_IOC_FLAG_GROUP); err != nil {
		return NewCounterOperationError("Start", "reset counters", err)
	}
	if err := unix.IoctlSetInt(s.leader, unix.PERF_EVENT_IOC_ENABLE, unix.PERF_IOC_FLAG_GROUP); err != nil {
		return NewCounterOperationError("Start", "enable counters", err)
	}
	return nil
}

func (s *perfEventSet) Stop() ([]uint64, error) {
	if s.leader < 0 {
		return nil, NewCounterOperationError("Stop", "event set is empty", nil)
	}
	if err := unix.IoctlSetInt(s.leader, unix.PERF_EVENT_IOC_DISABLE, unix.PERF_IOC_FLAG_GROUP); err != nil {
		return nil, NewCounterOperationError("Stop", "disable counters", err)
	}

	values := make([]uint64, len(s.fds))
	var buf [8]byte
	for i, fd := range s.fds {
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			return nil, NewCounterOperationError("Stop", "read counter", err)
		}
		if n != len(buf) {
			return nil, NewCounterOperationError("Stop", "short counter read", nil)
		}
		values[i] = binary.NativeEndian.Uint64(buf[:])
	}
	return values, nil
}

// Close closes members before the leader.
func (s *perfEventSet) Close() error {
	var errs []error
	for i := len(s.fds) - 1; i >= 0; i-- {
		if err := unix.Close(s.fds[i]); err != nil {
			errs = append(errs, err)
		}
	}
	s.fds = nil
	s.leader = -1

	if err := errors.Join(errs...); err != nil {
		return NewCounterOperationError("Close", "close perf events", err)
	}
	return nil
}
