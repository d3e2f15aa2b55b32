package memorystore

import (
	"context"
	"slices"
	"sync"
)

// MemoryStateStore keeps serialized states in process memory, keyed like
// browser local storage. Payloads are copied on the way in and out.
type MemoryStateStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		entries: make(map[string][]byte),
	}
}

func (s *MemoryStateStore) SaveState(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = slices.Clone(payload)
	return nil
}

// LoadState returns nil without error when nothing is stored under key.
func (s *MemoryStateStore) LoadState(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(payload), nil
}
