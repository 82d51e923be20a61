package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is an in-process TTL cache. A zero TTL keeps entries until deleted.
// Every Delete bumps a generation counter so loads that started before an
// invalidation never write their result back.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	generation uint64
	ttl        time.Duration
	flight     singleflight.Group
	now        func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.setLocked(key, value)
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.generation++
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value or runs loader once for all concurrent
// callers of the same key.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	flightKey := key + "#" + strconv.FormatUint(gen, 10)
	value, err, _ := s.flight.Do(flightKey, func() (any, error) {
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}

		s.mu.Lock()
		if s.generation == gen {
			s.setLocked(key, loaded)
		}
		s.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) setLocked(key string, value any) {
	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
}
