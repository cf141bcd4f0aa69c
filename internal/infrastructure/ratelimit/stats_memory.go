package ratelimit

import (
	"context"
	"maps"
	"sync"

	"github.com/ipede/album-catalog/internal/domain"
)

type Counters struct {
	Admitted int64
	Rejected int64
}

func (c *Counters) add(admitted bool) {
	if admitted {
		c.Admitted++
		return
	}
	c.Rejected++
}

// MemoryStatsRecorder keeps admission counters in process.
// Counters never expire; use it for tests and local runs.
type MemoryStatsRecorder struct {
	mu         sync.Mutex
	total      Counters
	byRoute    map[string]Counters
	byUsername map[string]Counters
}

func NewMemoryStatsRecorder() *MemoryStatsRecorder {
	return &MemoryStatsRecorder{
		byRoute:    make(map[string]Counters),
		byUsername: make(map[string]Counters),
	}
}

func (s *MemoryStatsRecorder) Record(_ context.Context, ev domain.AdmissionEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Admitted)

	c := s.byRoute[route]
	c.add(ev.Admitted)
	s.byRoute[route] = c

	u := s.byUsername[ev.Username]
	u.add(ev.Admitted)
	s.byUsername[ev.Username] = u
	return nil
}

func (s *MemoryStatsRecorder) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsRecorder) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.byRoute)
}

func (s *MemoryStatsRecorder) ByUsername() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.byUsername)
}
