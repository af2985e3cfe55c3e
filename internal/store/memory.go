package store

import (
	"context"
	"sync"
)

// LastLocationKey is the preference key holding the last successful location.
const LastLocationKey = "lastLocation"

// MemoryStore is a concurrency-safe in-memory preference store.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prefs: make(map[string]string),
	}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.prefs[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[key] = value
	return nil
}

// LastLocation returns the saved location, if any.
func (s *MemoryStore) LastLocation(ctx context.Context) (string, bool, error) {
	return s.Get(ctx, LastLocationKey)
}

// SaveLastLocation replaces the saved location.
func (s *MemoryStore) SaveLastLocation(ctx context.Context, location string) error {
	return s.Set(ctx, LastLocationKey, location)
}

// Close is a no-op; it lets MemoryStore stand in for SQLiteStore.
func (s *MemoryStore) Close() error { return nil }
