package matprod

import "errors"

var errFake = errors.New("fake counter failure")

// fakeBackend records every counter call and returns canned values.
type fakeBackend struct {
	initErr   error
	createErr error
	addErr    map[Event]error
	startErr  error
	stopErr   error
	values    map[Event]uint64

	calls []string
}

func (f *fakeBackend) Init() error {
	f.calls = append(f.calls, "init")
	return f.initErr
}

func (f *fakeBackend) NewEventSet() (EventSet, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &fakeEventSet{b: f}, nil
}

type fakeEventSet struct {
	b     *fakeBackend
	added []Event
}

func (s *fakeEventSet) Add(ev Event) error {
	s.b.calls = append(s.b.calls, "add "+ev.String())
	if err := s.b.addErr[ev]; err != nil {
		return err
	}
	s.added = append(s.added, ev)
	return nil
}

func (s *fakeEventSet) Start() error {
	s.b.calls = append(s.b.calls, "start")
	return s.b.startErr
}

func (s *fakeEventSet) Stop() ([]uint64, error) {
	s.b.calls = append(s.b.calls, "stop")
	if s.b.stopErr != nil {
		return nil, s.b.stopErr
	}
	values := make([]uint64, len(s.added))
	for i, ev := range s.added {
		values[i] = s.b.values[ev]
	}
	return values, nil
}

func (s *fakeEventSet) Close() error {
	s.b.calls = append(s.b.calls, "close")
	s.added = nil
	return nil
}
