package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"shoplist/internal/shop"
)

// MemoryStore is an in-memory BlobStore, useful for testing.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put writes the blob at key, replacing any existing blob.
func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return &shop.StorageError{Op: "put", Key: key, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

// Get reads the blob at key into w.
func (s *MemoryStore) Get(_ context.Context, key string, w io.Writer) error {
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("blob %s: %w", key, shop.ErrNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return &shop.StorageError{Op: "get", Key: key, Err: err}
	}
	return nil
}

// Delete removes the blob at key. Absent keys are a no-op.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// List returns every key starting with prefix.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// ValidateSetup always succeeds for the in-memory store.
func (s *MemoryStore) ValidateSetup(_ context.Context) error { return nil }

// Compile-time check that MemoryStore implements shop.BlobStore
var _ shop.BlobStore = (*MemoryStore)(nil)
