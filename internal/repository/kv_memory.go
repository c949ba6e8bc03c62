package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/nikolayk812/foodie/internal/port"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() port.KeyValueStore {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return slices.Clone(value), nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = slices.Clone(value)
	return nil
}

func (m *memoryStore) SetAll(_ context.Context, entries []port.Entry) error {
	for _, e := range entries {
		if e.Key == "" {
			return fmt.Errorf("key is empty")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		m.entries[e.Key] = slices.Clone(e.Value)
	}
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
