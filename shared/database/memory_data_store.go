package database

import (
	"context"
	"sync"

	"butterfly-story/shared/interfaces"
)

var _ interfaces.DataStore = (*MemoryDataStore)(nil)

// MemoryDataStore - хранилище в памяти процесса. Используется по умолчанию и в тестах.
type MemoryDataStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	address string
	down    bool
}

// NewMemoryDataStore creates an empty in-memory store identified by address.
func NewMemoryDataStore(address string) *MemoryDataStore {
	return &MemoryDataStore{data: make(map[string][]byte), address: address}
}

func (s *MemoryDataStore) IsAvailable(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.down, nil
}

// SetAvailable toggles availability, for simulating a paused contract.
func (s *MemoryDataStore) SetAvailable(available bool) {
	s.mu.Lock()
	s.down = !available
	s.mu.Unlock()
}

func (s *MemoryDataStore) GetData(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return []byte{}, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryDataStore) SetData(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.data[key] = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryDataStore) Address() string { return s.address }
