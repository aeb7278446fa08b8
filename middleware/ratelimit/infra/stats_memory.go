package infra

import (
	"context"
	"sync"

	"coordination-gateway/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu         sync.Mutex
	total      Counters
	byPath     map[string]Counters
	byIdentity map[string]Counters

	trackIdentities bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackIdentities(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackIdentities = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byPath:     make(map[string]Counters),
		byIdentity: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bump := func(c Counters) Counters {
		if ev.Allowed {
			c.Allowed++
		} else {
			c.Denied++
		}
		return c
	}

	s.total = bump(s.total)
	if ev.Path != "" {
		s.byPath[ev.Path] = bump(s.byPath[ev.Path])
	}
	if s.trackIdentities && ev.Identity != "" {
		k := string(ev.Identity)
		s.byIdentity[k] = bump(s.byIdentity[k])
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByPath() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byPath))
	for k, v := range s.byPath {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByIdentity() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byIdentity))
	for k, v := range s.byIdentity {
		out[k] = v
	}
	return out
}
