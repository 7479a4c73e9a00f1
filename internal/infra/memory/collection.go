// Package memory is the in-memory collection.Store. It backs tests and the
// zero-dependency STORAGE_BACKEND=memory mode.
package memory

import (
	"context"
	"sync"

	"github.com/porchrate/core/internal/storage/collection"
)

type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

func New() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.data[name]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(cur))
	copy(cp, cur)
	return cp, nil
}

func (s *Store) Update(_ context.Context, name string, fn collection.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.data[name])
	if err != nil {
		return err
	}
	s.data[name] = next
	return nil
}
