package sheet

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

// NewMemoryStore returns a RemoteStore backed by process memory, for tests
// and offline runs.
func NewMemoryStore() RemoteStore {
	return &memoryStore{sheets: map[string][][]string{}}
}

func (m *memoryStore) Get(_ context.Context, name string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	grid, ok := m.sheets[name]
	if !ok {
		return nil, ErrNotFound
	}
	return copyGrid(grid), nil
}

func (m *memoryStore) Put(_ context.Context, name string, grid [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[name] = copyGrid(grid)
	return nil
}

func (m *memoryStore) Create(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[name]; ok {
		return ErrExists
	}
	m.sheets[name] = [][]string{}
	return nil
}

func (m *memoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sheets, name)
	return nil
}

func copyGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}
