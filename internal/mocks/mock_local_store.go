package mocks

import (
	"context"
	"sync"

	"github.com/peekpark/peekpark/domain"
)

// MockLocalStore implements domain.LocalStore in memory
type MockLocalStore struct {
	GetItemFunc    func(ctx context.Context, key string) (string, bool, error)
	SetItemFunc    func(ctx context.Context, key, value string) error
	RemoveItemFunc func(ctx context.Context, key string) error

	mu    sync.Mutex
	Items map[string]string
}

// NewMockLocalStore creates an empty MockLocalStore
func NewMockLocalStore() *MockLocalStore {
	return &MockLocalStore{Items: map[string]string{}}
}

// GetItem reads key
func (m *MockLocalStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Items[key]
	return v, ok, nil
}

// SetItem writes key
func (m *MockLocalStore) SetItem(ctx context.Context, key, value string) error {
	if m.SetItemFunc != nil {
		return m.SetItemFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[key] = value
	return nil
}

// RemoveItem deletes key
func (m *MockLocalStore) RemoveItem(ctx context.Context, key string) error {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Items, key)
	return nil
}

// Get returns the raw stored value of key
func (m *MockLocalStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Items[key]
	return v, ok
}

// Compile-time interface compliance verification
var _ domain.LocalStore = (*MockLocalStore)(nil)
