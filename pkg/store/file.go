package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore implements directory-backed storage for CLI usage.
// Each entry is stored as one JSON file with metadata (expiration).
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// storeEntry wraps stored data with metadata.
type storeEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a payload from the store.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry storeEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Invalid entry - treat as miss
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores a payload.
func (s *FileStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := storeEntry{
		Data: data,
	}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(key), entryData, 0644)
}

// Delete removes a payload from the store.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns every non-expired key in the store directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if _, ok, err := s.Get(ctx, key); err != nil {
			return nil, err
		} else if ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// path converts a store key to a file path. Keys are snapshot IDs, which
// are validated UUIDs, so they are safe as file names.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
