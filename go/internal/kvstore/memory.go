package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]json.RawMessage)}
}

func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	path, err := validPath(path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return append(json.RawMessage(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = data
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	merged, err := mergeObject(m.entries[path], fields)
	if err != nil {
		return err
	}
	m.entries[path] = merged
	return nil
}

func (m *Memory) Remove(_ context.Context, path string) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.entries {
		if isBelow(path, k) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *Memory) Children(_ context.Context, parent string) (map[string]json.RawMessage, error) {
	parent, err := validPath(parent)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]json.RawMessage)
	for k, v := range m.entries {
		if key, ok := childKey(parent, k); ok {
			out[key] = append(json.RawMessage(nil), v...)
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
