package inmemory

import (
	"context"
	"sync"

	"webdistill/models"
)

// Store is a mutex-guarded in-process entry store, the default for a single
// gateway instance.
type Store struct {
	entries map[string]models.CacheEntry
	mu      sync.RWMutex
}

func NewStore() *Store {
	return &Store{entries: make(map[string]models.CacheEntry)}
}

func (s *Store) Get(ctx context.Context, key string) (models.CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *Store) Set(ctx context.Context, entry models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len reports the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
