package fixtures

import (
	"errors"
	"sync"
)

// ErrStoreDown is returned by MemoryStore when FailWrites is set.
var ErrStoreDown = errors.New("store unavailable")

// MemoryStore is an in-memory domain.SessionStore.
type MemoryStore struct {
	mu         sync.Mutex
	data       map[string][]byte
	FailWrites bool
	writes     int
}

// NewMemoryStore creates an empty store, optionally seeded.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	s := &MemoryStore{data: make(map[string][]byte)}
	for k, v := range seed {
		s.data[k] = []byte(v)
	}
	return s
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	return s.SetMany(map[string][]byte{key: value})
}

func (s *MemoryStore) SetMany(entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return ErrStoreDown
	}
	for k, v := range entries {
		s.data[k] = append([]byte(nil), v...)
	}
	s.writes++
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return ErrStoreDown
	}
	delete(s.data, key)
	s.writes++
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Raw returns the stored bytes of key as a string.
func (s *MemoryStore) Raw(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data[key])
}

// Writes counts successful write batches.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
