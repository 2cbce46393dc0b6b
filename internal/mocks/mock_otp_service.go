package mocks

import (
	"context"

	"github.com/peekpark/peekpark/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc     func(ctx context.Context, phone string) (*domain.OTPChallenge, error)
	ConfirmFunc   func(ctx context.Context, challengeID, code string) (string, error)
	CanResendFunc func(ctx context.Context, phone string) (bool, int64, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue creates a challenge for phone
func (m *MockOTPService) Issue(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, phone)
	}
	return &domain.OTPChallenge{ID: "challenge-1", Phone: phone}, nil
}

// Confirm checks code and returns the phone the challenge was issued for
func (m *MockOTPService) Confirm(ctx context.Context, challengeID, code string) (string, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, challengeID, code)
	}
	return "", domain.NewProviderError(domain.CodeInvalidVerificationCode, nil)
}

// CanResend checks whether a new code may be sent to phone
func (m *MockOTPService) CanResend(ctx context.Context, phone string) (bool, int64, error) {
	if m.CanResendFunc != nil {
		return m.CanResendFunc(ctx, phone)
	}
	// Default behavior: can resend
	return true, 0, nil
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
