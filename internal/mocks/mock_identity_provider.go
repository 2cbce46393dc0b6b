package mocks

import (
	"context"
	"sync"

	"github.com/peekpark/peekpark/domain"
)

// MockIdentityProvider implements domain.IdentityProvider interface for testing.
// It records how often each operation ran so tests can assert no provider call happened.
type MockIdentityProvider struct {
	StartPhoneVerificationFunc   func(ctx context.Context, phone string) (*domain.OTPChallenge, error)
	ConfirmPhoneVerificationFunc func(ctx context.Context, challenge *domain.OTPChallenge, code string) (*domain.ProviderSession, error)
	SignOutFunc                  func(ctx context.Context, idToken string) error

	mu           sync.Mutex
	StartCalls   int
	ConfirmCalls int
	SignOuts     []string
}

// NewMockIdentityProvider creates a new MockIdentityProvider with default behaviors
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{}
}

// StartPhoneVerification sends a code to phone
func (m *MockIdentityProvider) StartPhoneVerification(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
	m.mu.Lock()
	m.StartCalls++
	m.mu.Unlock()
	if m.StartPhoneVerificationFunc != nil {
		return m.StartPhoneVerificationFunc(ctx, phone)
	}
	return &domain.OTPChallenge{ID: "challenge-1", Phone: phone}, nil
}

// ConfirmPhoneVerification checks code against challenge
func (m *MockIdentityProvider) ConfirmPhoneVerification(ctx context.Context, challenge *domain.OTPChallenge, code string) (*domain.ProviderSession, error) {
	m.mu.Lock()
	m.ConfirmCalls++
	m.mu.Unlock()
	if m.ConfirmPhoneVerificationFunc != nil {
		return m.ConfirmPhoneVerificationFunc(ctx, challenge, code)
	}
	return &domain.ProviderSession{ID: "session-1", Subject: "subject-1", Phone: challenge.Phone, IDToken: "id-token-1"}, nil
}

// SignOut terminates the provider session behind idToken
func (m *MockIdentityProvider) SignOut(ctx context.Context, idToken string) error {
	m.mu.Lock()
	m.SignOuts = append(m.SignOuts, idToken)
	m.mu.Unlock()
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, idToken)
	}
	return nil
}

// Calls returns the number of start and confirm calls and the signed-out tokens
func (m *MockIdentityProvider) Calls() (start, confirm int, signOuts []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartCalls, m.ConfirmCalls, append([]string(nil), m.SignOuts...)
}

// Compile-time interface compliance verification
var _ domain.IdentityProvider = (*MockIdentityProvider)(nil)
