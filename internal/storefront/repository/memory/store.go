package memory

import (
	"context"
	"sync"

	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// Store implements repository.KeyValueStore on an in-process map. Used in
// tests and single-node development, where Redis would be overkill.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty in-memory key-value store.
func NewStore() *Store {
	return &Store{
		values: make(map[string]string),
	}
}

// Read returns the value stored under key.
func (s *Store) Read(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.values[key]
	if !ok {
		return "", apperrors.NotFound("key", key)
	}
	return val, nil
}

// Write stores value under key.
func (s *Store) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove deletes the key. Deleting an absent key is a no-op.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
