package mocks

import (
	"context"
	"sync"
)

// MockStorage is an in-memory key/value store for cart persistence tests
type MockStorage struct {
	mu     sync.Mutex
	values map[string]string

	GetErr    error
	SetErr    error
	RemoveErr error

	SetCalls    int
	RemoveCalls int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{values: make(map[string]string)}
}

func (m *MockStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MockStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

func (m *MockStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RemoveCalls++
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.values, key)
	return nil
}

// Put seeds a raw value, bypassing error injection.
func (m *MockStorage) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Raw returns the stored value for key.
func (m *MockStorage) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}
