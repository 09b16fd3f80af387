package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in process memory. Suitable for a single facade
// instance; slot replacement is atomic under the mutex.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	slots map[string]Slot[T]
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{slots: make(map[string]Slot[T])}
}

func (s *MemoryStore[T]) Load(_ context.Context, key string) (Slot[T], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[key]
	return slot, ok, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, key string, slot Slot[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = slot
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}
