//go:build linux
// +build linux

package matprod

import (
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// threadBackend records the OS thread behind every counter call. Each call
// yields first so an unpinned goroutine is free to move between threads.
type threadBackend struct {
	tids []int
}

func (b *threadBackend) record() {
	runtime.Gosched()
	b.tids = append(b.tids, unix.Gettid())
}

func (b *threadBackend) Init() error {
	b.record()
	return nil
}

func (b *threadBackend) NewEventSet() (EventSet, error) {
	b.record()
	return &threadEventSet{b: b}, nil
}

type threadEventSet struct {
	b *threadBackend
	n int
}

func (s *threadEventSet) Add(Event) error {
	s.b.record()
	s.n++
	return nil
}

func (s *threadEventSet) Start() error {
	s.b.record()
	return nil
}

func (s *threadEventSet) Stop() ([]uint64, error) {
	runtime.GC()
	s.b.record()
	return make([]uint64, s.n), nil
}

func (s *threadEventSet) Close() error {
	s.b.record()
	return nil
}

func TestMeasureStaysOnOneThread(t *testing.T) {
	for i := 0; i < 20; i++ {
		b := &threadBackend{}
		h := NewHarness(Config{}, b, zerolog.Nop())

		_, err := h.Measure(Operation{Kernel: KernelBlock, Size: 64, BlockSize: 16})
		require.NoError(t, err)

		// init, create, two adds, start, stop, close
		require.Len(t, b.tids, 7)
		for _, tid := range b.tids[1:] {
			require.Equal(t, b.tids[0], tid, "counter calls spread over threads %v", b.tids)
		}
	}
}
