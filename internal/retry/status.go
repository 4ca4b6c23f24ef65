package retry

import (
	"log/slog"
	"sort"
	"sync"
)

// Listener receives a State snapshot after every attempt.
type Listener func(State)

// StatusReporter fans retry snapshots out to registered listeners and remembers the latest
// snapshot per operation. A panicking listener is logged and skipped.
type StatusReporter struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
	latest    map[string]State
}

func NewStatusReporter() *StatusReporter {
	return &StatusReporter{
		listeners: make(map[int]Listener),
		latest:    make(map[string]State),
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *StatusReporter) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Latest returns the most recent snapshot of every operation, ordered by operation name.
func (s *StatusReporter) Latest() []State {
	s.mu.RLock()
	out := make([]State, 0, len(s.latest))
	for _, st := range s.latest {
		out = append(out, st)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

func (s *StatusReporter) publish(logger *slog.Logger, state State) {
	s.mu.Lock()
	if state.Operation != "" {
		s.latest[state.Operation] = state
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		notify(logger, l, state)
	}
}

func notify(logger *slog.Logger, l Listener, state State) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("retry status listener panicked",
				"operation", state.Operation,
				"attempt", state.Attempt,
				"panic", rec)
		}
	}()
	l(state)
}
