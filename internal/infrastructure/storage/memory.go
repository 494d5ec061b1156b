package storage

import (
	"context"
	"sync"
)

// MemoryStore держит записи в памяти процесса.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[uint64]PlayerRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[uint64]PlayerRecord)}
}

func (s *MemoryStore) Load(_ context.Context, id uint64) (PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.players[id]
	if !ok {
		return PlayerRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
