package cache

import (
	"context"
	"sync"
)

// Memory is an unbounded, thread-safe in-memory cache
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory creates an empty memory cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]Entry),
	}
}

// Get implements Cache
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	return entry, ok, nil
}

// Put implements Cache. The first entry stored under a key wins.
func (m *Memory) Put(_ context.Context, key string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		m.entries[key] = entry
	}
	return nil
}

// Len returns the number of cached entries
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Clear removes all entries
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]Entry)
}
