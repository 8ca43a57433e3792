// Package memory provides an in-process cache store for ephemeral sessions
// and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/louisbranch/missionboard/internal/services/board/storage"
)

// Store keeps cache blobs in a map. Stored payloads are copied on the way in
// and out.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// New returns an empty memory store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Get returns the payload stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, fmt.Errorf("cache key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

// Put replaces the payload stored under key.
func (s *Store) Put(_ context.Context, key string, payload []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), payload...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
