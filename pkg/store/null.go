package store

import (
	"context"
	"time"
)

// NullStore is a no-op store that never persists anything.
// Useful for testing or when persistence should be disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Get always reports a miss.
func (s *NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (s *NullStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// List returns no keys.
func (s *NullStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
