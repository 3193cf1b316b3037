package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Backend is a byte-oriented TTL cache. Callers own serialization.
type Backend interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is the in-process Backend.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	gen     uint64
	flight  singleflight.Group
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

func (s *Store) newEntry(value []byte) entry {
	e := entry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}

// Get returns a live entry. An expired one is evicted unless a newer write
// already replaced it.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	switch {
	case !ok:
		return nil, false
	case !e.expired(s.now()):
		return e.value, true
	}

	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil, false
}

func (s *Store) Set(_ context.Context, key string, value []byte) {
	if key == "" {
		return
	}
	e := s.newEntry(value)
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// setIfCurrent drops the write when DeletePrefix ran after the load started,
// so a stale load never repopulates the cache.
func (s *Store) setIfCurrent(key string, value []byte, gen uint64) {
	e := s.newEntry(value)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.entries[key] = e
	}
}

// DeletePrefix drops matching keys and, while it holds the lock, any entry
// that has already expired.
func (s *Store) DeletePrefix(_ context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) || e.expired(now) {
			delete(s.entries, key)
		}
	}
	s.gen++
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		// Another caller may have finished loading while we queued.
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		s.mu.RLock()
		gen := s.gen
		s.mu.RUnlock()

		loaded, err := loader(ctx)
		if err == nil {
			s.setIfCurrent(key, loaded, gen)
		}
		return loaded, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
