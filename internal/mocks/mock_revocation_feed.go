package mocks

import (
	"context"
	"sync"

	"github.com/peekpark/peekpark/domain"
)

// MockRevocationFeed implements domain.RevocationFeed in memory.
// Publish delivers synchronously to every current subscriber.
type MockRevocationFeed struct {
	PublishFunc   func(ctx context.Context, event domain.RevocationEvent) error
	SubscribeFunc func(ctx context.Context, fn func(domain.RevocationEvent)) (func(), error)

	mu        sync.Mutex
	next      int
	listeners map[int]func(domain.RevocationEvent)
	Published []domain.RevocationEvent
}

// NewMockRevocationFeed creates a new MockRevocationFeed
func NewMockRevocationFeed() *MockRevocationFeed {
	return &MockRevocationFeed{listeners: map[int]func(domain.RevocationEvent){}}
}

// Publish records event and delivers it
func (m *MockRevocationFeed) Publish(ctx context.Context, event domain.RevocationEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	m.mu.Lock()
	m.Published = append(m.Published, event)
	fns := make([]func(domain.RevocationEvent), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
	return nil
}

// Subscribe registers fn until the returned stop function is called
func (m *MockRevocationFeed) Subscribe(ctx context.Context, fn func(domain.RevocationEvent)) (func(), error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, fn)
	}
	m.mu.Lock()
	id := m.next
	m.next++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}, nil
}

// Subscribers returns the number of active subscriptions
func (m *MockRevocationFeed) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// Compile-time interface compliance verification
var _ domain.RevocationFeed = (*MockRevocationFeed)(nil)
