package mocks

import (
	"context"

	"github.com/peekpark/peekpark/domain"
)

// MockSessionRepository implements domain.SessionRepository interface for testing
type MockSessionRepository struct {
	CreateFunc          func(ctx context.Context, session *domain.ProviderSession) error
	FindByIDFunc        func(ctx context.Context, sessionID string) (*domain.ProviderSession, error)
	DeleteFunc          func(ctx context.Context, sessionID string) error
	DeleteBySubjectFunc func(ctx context.Context, subject string) ([]string, error)
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Create creates a new session
func (m *MockSessionRepository) Create(ctx context.Context, session *domain.ProviderSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

// FindByID finds a session by ID
func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.ProviderSession, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

// Delete deletes a session
func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	return nil
}

// DeleteBySubject deletes every session of a subject
func (m *MockSessionRepository) DeleteBySubject(ctx context.Context, subject string) ([]string, error) {
	if m.DeleteBySubjectFunc != nil {
		return m.DeleteBySubjectFunc(ctx, subject)
	}
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
