package mocks

import (
	"time"

	"github.com/peekpark/peekpark/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	GenerateIDTokenFunc func(session *domain.ProviderSession) (string, error)
	ValidateIDTokenFunc func(token string) (*domain.TokenClaims, error)
	ParseIDTokenFunc    func(token string) (*domain.TokenClaims, error)
	TTLValue            time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{TTLValue: time.Hour}
}

// GenerateIDToken signs an ID token for session
func (m *MockTokenService) GenerateIDToken(session *domain.ProviderSession) (string, error) {
	if m.GenerateIDTokenFunc != nil {
		return m.GenerateIDTokenFunc(session)
	}
	return "id-token:" + session.ID, nil
}

// ValidateIDToken verifies an unexpired token
func (m *MockTokenService) ValidateIDToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateIDTokenFunc != nil {
		return m.ValidateIDTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

// ParseIDToken verifies a token regardless of expiry
func (m *MockTokenService) ParseIDToken(token string) (*domain.TokenClaims, error) {
	if m.ParseIDTokenFunc != nil {
		return m.ParseIDTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

// TTL returns the token lifetime
func (m *MockTokenService) TTL() time.Duration { return m.TTLValue }

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
