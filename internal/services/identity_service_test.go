package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identityMocks struct {
	device   *mocks.MockDeviceIdentity
	users    *mocks.MockUserRepository
	provider *mocks.MockIdentityProvider
	audit    *mocks.MockAuditLogger
}

// createIdentityServiceForTest creates a DeviceBindingService on device-a with mock dependencies
func createIdentityServiceForTest(t *testing.T) (*DeviceBindingService, *identityMocks) {
	t.Helper()

	m := &identityMocks{
		device:   mocks.NewMockDeviceIdentity("device-a"),
		users:    mocks.NewMockUserRepository(),
		provider: mocks.NewMockIdentityProvider(),
		audit:    mocks.NewMockAuditLogger(),
	}
	return NewDeviceBindingService(m.device, m.users, m.provider, m.audit, zerolog.Nop()), m
}

func boundUser(deviceID string) *domain.User {
	return &domain.User{
		ID:       "subject-1",
		Name:     "Alia",
		Phone:    testPhone,
		DeviceID: deviceID,
		Device:   mocks.NewMockDeviceIdentity(deviceID).Info,
		IsActive: true,
	}
}

func requireReason(t *testing.T, err error, reason domain.Reason) *domain.AuthError {
	t.Helper()
	require.Error(t, err)
	var authErr *domain.AuthError
	require.True(t, errors.As(err, &authErr), "expected AuthError, got %T: %v", err, err)
	assert.Equal(t, reason, authErr.Reason)
	return authErr
}

func TestDeviceBindingService_RequestOTP(t *testing.T) {
	tests := []struct {
		name           string
		phone          string
		setupMocks     func(*identityMocks)
		expectedReason domain.Reason
		expectStart    bool
		validate       func(t *testing.T, challenge *domain.OTPChallenge, err error)
	}{
		{
			name:        "new number",
			phone:       "050 123 4567",
			expectStart: true,
			validate: func(t *testing.T, challenge *domain.OTPChallenge, err error) {
				require.NoError(t, err)
				assert.Equal(t, testPhone, challenge.Phone)
			},
		},
		{
			name:  "number bound to this device",
			phone: "+971501234567",
			setupMocks: func(m *identityMocks) {
				m.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					return boundUser("device-a"), nil
				}
			},
			expectStart: true,
		},
		{
			name:  "lookup denied before authentication counts as no account",
			phone: "501234567",
			setupMocks: func(m *identityMocks) {
				m.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					return nil, domain.ErrPermissionDenied
				}
			},
			expectStart: true,
		},
		{
			name:           "invalid prefix",
			phone:          "531234567",
			expectedReason: domain.ReasonValidation,
		},
		{
			name:           "too short",
			phone:          "50123456",
			expectedReason: domain.ReasonValidation,
		},
		{
			name:  "number bound to another device",
			phone: "501234567",
			setupMocks: func(m *identityMocks) {
				m.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					return boundUser("device-b"), nil
				}
			},
			expectedReason: domain.ReasonDeviceMismatch,
			validate: func(t *testing.T, challenge *domain.OTPChallenge, err error) {
				var authErr *domain.AuthError
				require.True(t, errors.As(err, &authErr))
				require.NotNil(t, authErr.Device)
				assert.Equal(t, "device-b phone", authErr.Device.DeviceName)
				assert.Equal(t, "This account is linked to another device. Device: device-b phone (Google Pixel 8)", authErr.Message())
			},
		},
		{
			name:  "document store failure",
			phone: "501234567",
			setupMocks: func(m *identityMocks) {
				m.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					return nil, errors.New("connection refused")
				}
			},
			expectedReason: domain.ReasonUnknown,
		},
		{
			name:  "provider rate limit",
			phone: "501234567",
			setupMocks: func(m *identityMocks) {
				m.provider.StartPhoneVerificationFunc = func(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
					return nil, domain.NewProviderError(domain.CodeTooManyRequests, nil)
				}
			},
			expectedReason: domain.ReasonRateLimited,
			expectStart:    true,
		},
		{
			name:  "provider billing not enabled",
			phone: "501234567",
			setupMocks: func(m *identityMocks) {
				m.provider.StartPhoneVerificationFunc = func(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
					return nil, domain.NewProviderError(domain.CodeBillingNotEnabled, nil)
				}
			},
			expectedReason: domain.ReasonBillingRequired,
			expectStart:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := createIdentityServiceForTest(t)
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			challenge, err := svc.RequestOTP(context.Background(), tt.phone)

			if tt.expectedReason != "" {
				requireReason(t, err, tt.expectedReason)
				assert.Nil(t, challenge)
			} else {
				require.NoError(t, err)
			}
			start, _, _ := m.provider.Calls()
			if tt.expectStart {
				assert.Equal(t, 1, start)
			} else {
				assert.Zero(t, start, "provider must not be contacted")
			}
			if tt.validate != nil {
				tt.validate(t, challenge, err)
			}
		})
	}
}

func TestDeviceBindingService_VerifyOTP(t *testing.T) {
	challenge := func() *domain.OTPChallenge {
		return &domain.OTPChallenge{ID: "challenge-1", Phone: testPhone, ExpiresAt: time.Now().Add(time.Minute)}
	}

	tests := []struct {
		name           string
		challenge      *domain.OTPChallenge
		code           string
		displayName    string
		setupMocks     func(*identityMocks)
		expectedReason domain.Reason
		expectedCode   domain.ProviderCode
		expectConfirm  bool
		expectSignOut  bool
		validate       func(t *testing.T, result *domain.AuthResult, m *identityMocks)
	}{
		{
			name:          "new user is registered on this device",
			challenge:     challenge(),
			code:          "123456",
			displayName:   "  Alia ",
			expectConfirm: true,
			setupMocks: func(m *identityMocks) {
				m.users.CreateIfAbsentFunc = func(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
					assert.Equal(t, "subject-1", user.ID)
					assert.Equal(t, "Alia", user.Name)
					assert.Equal(t, testPhone, user.Phone)
					assert.Equal(t, "device-a", user.DeviceID)
					assert.Equal(t, "device-a phone", user.Device.DeviceName)
					assert.True(t, user.IsVerified)
					assert.True(t, user.IsActive)
					assert.False(t, user.CreatedAt.IsZero())
					assert.Equal(t, user.CreatedAt, user.LastLoginAt)
					return user, true, nil
				}
			},
			validate: func(t *testing.T, result *domain.AuthResult, m *identityMocks) {
				assert.True(t, result.IsNewUser)
				assert.Equal(t, "session-1", result.Session.ID)
				assert.Contains(t, m.audit.Types(), domain.UserRegistrationEvent)
			},
		},
		{
			name:          "returning user on the bound device",
			challenge:     challenge(),
			code:          "123456",
			expectConfirm: true,
			setupMocks: func(m *identityMocks) {
				m.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					u := boundUser("device-a")
					u.IsActive = false
					return u, nil
				}
				m.users.CreateIfAbsentFunc = func(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
					t.Error("existing accounts must not be re-created")
					return user, false, nil
				}
			},
			validate: func(t *testing.T, result *domain.AuthResult, m *identityMocks) {
				assert.False(t, result.IsNewUser)
				assert.True(t, result.User.IsActive)
				assert.False(t, result.User.LastLoginAt.IsZero())
				assert.Contains(t, m.audit.Types(), domain.UserLoginEvent)
			},
		},
		{
			name:          "failed login stamp is not fatal",
			challenge:     challenge(),
			code:          "123456",
			expectConfirm: true,
			setupMocks: func(m *identityMocks) {
				m.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					return boundUser("device-a"), nil
				}
				m.users.RecordLoginFunc = func(ctx context.Context, id string, at time.Time) error {
					return errors.New("write failed")
				}
			},
			validate: func(t *testing.T, result *domain.AuthResult, m *identityMocks) {
				assert.Equal(t, "subject-1", result.User.ID)
			},
		},
		{
			name:          "lost create race continues with the winner",
			challenge:     challenge(),
			code:          "123456",
			displayName:   "Alia",
			expectConfirm: true,
			expectSignOut: true,
			setupMocks: func(m *identityMocks) {
				m.users.CreateIfAbsentFunc = func(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
					return boundUser("device-b"), false, nil
				}
			},
			expectedReason: domain.ReasonDeviceMismatch,
		},
		{
			name:           "code too short",
			challenge:      challenge(),
			code:           "12345",
			expectedReason: domain.ReasonValidation,
		},
		{
			name:           "code with letters",
			challenge:      challenge(),
			code:           "12a456",
			expectedReason: domain.ReasonValidation,
		},
		{
			name:           "missing challenge",
			code:           "123456",
			expectedReason: domain.ReasonInvalidOrExpiredOTP,
			expectedCode:   domain.CodeInvalidVerificationID,
		},
		{
			name:           "challenge for another number",
			challenge:      &domain.OTPChallenge{ID: "challenge-1", Phone: "+971551234567"},
			code:           "123456",
			expectedReason: domain.ReasonInvalidOrExpiredOTP,
			expectedCode:   domain.CodeInvalidVerificationID,
		},
		{
			name:           "expired challenge",
			challenge:      &domain.OTPChallenge{ID: "challenge-1", Phone: testPhone, ExpiresAt: time.Now().Add(-time.Second)},
			code:           "123456",
			expectedReason: domain.ReasonInvalidOrExpiredOTP,
			expectedCode:   domain.CodeCodeExpired,
		},
		{
			name:          "wrong code",
			challenge:     challenge(),
			code:          "654321",
			expectConfirm: true,
			setupMocks: func(m *identityMocks) {
				m.provider.ConfirmPhoneVerificationFunc = func(ctx context.Context, c *domain.OTPChallenge, code string) (*domain.ProviderSession, error) {
					return nil, domain.NewProviderError(domain.CodeInvalidVerificationCode, nil)
				}
			},
			expectedReason: domain.ReasonInvalidOrExpiredOTP,
			expectedCode:   domain.CodeInvalidVerificationCode,
		},
		{
			name:           "new user without a name",
			challenge:      challenge(),
			code:           "123456",
			displayName:    "   ",
			expectConfirm:  true,
			expectSignOut:  true,
			expectedReason: domain.ReasonNameRequired,
		},
		{
			name:          "account bound to another device",
			challenge:     challenge(),
			code:          "123456",
			expectConfirm: true,
			expectSignOut: true,
			setupMocks: func(m *identityMocks) {
				m.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					return boundUser("device-b"), nil
				}
				m.users.RecordLoginFunc = func(ctx context.Context, id string, at time.Time) error {
					t.Error("the other device's account must not be touched")
					return nil
				}
			},
			expectedReason: domain.ReasonDeviceMismatch,
		},
		{
			name:          "document store failure on create",
			challenge:     challenge(),
			code:          "123456",
			displayName:   "Alia",
			expectConfirm: true,
			expectSignOut: true,
			setupMocks: func(m *identityMocks) {
				m.users.CreateIfAbsentFunc = func(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
					return nil, false, errors.New("disk full")
				}
			},
			expectedReason: domain.ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := createIdentityServiceForTest(t)
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			result, err := svc.VerifyOTP(context.Background(), "501234567", tt.challenge, tt.code, tt.displayName)

			if tt.expectedReason != "" {
				authErr := requireReason(t, err, tt.expectedReason)
				assert.Nil(t, result)
				if tt.expectedCode != "" {
					assert.Equal(t, tt.expectedCode, authErr.Code)
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
			}

			_, confirm, signOuts := m.provider.Calls()
			if tt.expectConfirm {
				assert.Equal(t, 1, confirm)
			} else {
				assert.Zero(t, confirm, "provider must not be contacted")
			}
			if tt.expectSignOut {
				assert.Equal(t, []string{"id-token-1"}, signOuts)
			} else {
				assert.Empty(t, signOuts)
			}
			if tt.validate != nil {
				tt.validate(t, result, m)
			}
		})
	}
}

func TestDeviceBindingService_DeviceIdentity(t *testing.T) {
	svc, _ := createIdentityServiceForTest(t)
	ctx := context.Background()

	assert.Equal(t, "device-a", svc.DeviceID(ctx))
	assert.Equal(t, "Pixel 8", svc.DeviceDescriptor(ctx).ModelName)
}
