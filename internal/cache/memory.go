package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore - потокобезопасный LRU-кэш в памяти процесса.
type MemoryStore struct {
	entries *lru.Cache[string, []byte]
}

// NewMemoryStore создает LRU-кэш на size записей.
func NewMemoryStore(size int) (*MemoryStore, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &MemoryStore{entries: entries}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := s.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries.Add(key, stored)
	return nil
}

// Len возвращает количество записей в кэше.
func (s *MemoryStore) Len() int { return s.entries.Len() }

func (s *MemoryStore) Close() error {
	s.entries.Purge()
	return nil
}
