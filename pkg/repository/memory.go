package repository

import "sync"

// memoryStore implements Store as an in-process map. Used by tests and
// ephemeral runs where nothing should touch the disk.
type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory creates an in-memory Store.
func NewMemory() Store {
	return &memoryStore{data: map[string]string{}}
}

func (s *memoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}
