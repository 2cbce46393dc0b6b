package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/phone"
	"github.com/rs/zerolog"
)

// DeviceBindingService binds each phone number to the first device that verified it
type DeviceBindingService struct {
	device   domain.DeviceIdentity
	users    domain.UserRepository
	provider domain.IdentityProvider
	audit    domain.AuditLogger
	log      zerolog.Logger
	now      func() time.Time
}

// NewDeviceBindingService creates the device-binding identity layer
func NewDeviceBindingService(
	device domain.DeviceIdentity,
	users domain.UserRepository,
	provider domain.IdentityProvider,
	audit domain.AuditLogger,
	logger zerolog.Logger,
) *DeviceBindingService {
	return &DeviceBindingService{
		device:   device,
		users:    users,
		provider: provider,
		audit:    audit,
		log:      logger.With().Str("component", "identity").Logger(),
		now:      time.Now,
	}
}

// DeviceID returns this device's identifier
func (s *DeviceBindingService) DeviceID(ctx context.Context) string {
	return s.device.DeviceID(ctx)
}

// DeviceDescriptor returns this device's descriptor
func (s *DeviceBindingService) DeviceDescriptor(ctx context.Context) domain.DeviceDescriptor {
	return s.device.Descriptor(ctx)
}

// RequestOTP validates raw, checks the number is not bound to another device and sends a code
func (s *DeviceBindingService) RequestOTP(ctx context.Context, raw string) (*domain.OTPChallenge, error) {
	number, err := phone.Normalize(raw)
	if err != nil {
		return nil, &domain.AuthError{Reason: domain.ReasonValidation, Err: err}
	}
	deviceID := s.DeviceID(ctx)

	existing, err := s.findByPhone(ctx, number.E164)
	if err != nil {
		return nil, domain.AsAuthError(fmt.Errorf("lookup account: %w", err))
	}
	if existing != nil && !existing.BoundTo(deviceID) {
		s.logEvent(ctx, domain.NewAuditEvent(domain.DeviceMismatchEvent, existing.ID).
			WithPhone(number.E164).WithDevice(deviceID).WithMetadata("stage", "request"))
		return nil, domain.DeviceMismatchError(existing.Device)
	}

	challenge, err := s.provider.StartPhoneVerification(ctx, number.E164)
	if err != nil {
		authErr := domain.AsAuthError(err)
		s.logEvent(ctx, domain.NewAuditEvent(domain.PhoneOTPRejectEvent, "").
			WithPhone(number.E164).WithDevice(deviceID).WithError(authErr))
		return nil, authErr
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.PhoneOTPRequestEvent, "").
		WithPhone(number.E164).WithDevice(deviceID))
	return challenge, nil
}

// VerifyOTP confirms code against challenge and signs the device in, registering
// the number under displayName when no account exists yet
func (s *DeviceBindingService) VerifyOTP(ctx context.Context, raw string, challenge *domain.OTPChallenge, code, displayName string) (*domain.AuthResult, error) {
	if err := phone.ValidateCode(code); err != nil {
		return nil, &domain.AuthError{Reason: domain.ReasonValidation, Detail: "Please enter a valid 6-digit OTP", Err: err}
	}
	number, err := phone.Normalize(raw)
	if err != nil {
		return nil, &domain.AuthError{Reason: domain.ReasonValidation, Err: err}
	}
	if challenge == nil || challenge.Phone != number.E164 {
		return nil, domain.AuthErrorFromProvider(domain.NewProviderError(domain.CodeInvalidVerificationID, nil))
	}
	if challenge.Expired(s.now()) {
		return nil, domain.AuthErrorFromProvider(domain.NewProviderError(domain.CodeCodeExpired, nil))
	}

	session, err := s.provider.ConfirmPhoneVerification(ctx, challenge, code)
	if err != nil {
		authErr := domain.AsAuthError(err)
		s.logEvent(ctx, domain.NewAuditEvent(domain.PhoneOTPFailureEvent, "").
			WithPhone(number.E164).WithDevice(s.DeviceID(ctx)).WithError(authErr))
		return nil, authErr
	}
	s.logEvent(ctx, domain.NewAuditEvent(domain.PhoneOTPVerifyEvent, session.Subject).
		WithPhone(number.E164).WithSession(session.ID))

	result, err := s.bind(ctx, session, displayName)
	if err != nil {
		return nil, domain.AsAuthError(err)
	}
	return result, nil
}

// SignOut terminates the provider session behind idToken
func (s *DeviceBindingService) SignOut(ctx context.Context, idToken string) error {
	return s.provider.SignOut(ctx, idToken)
}

// bind links the provider session to an account document. Every rejection
// signs the new session out so no session outlives a failed bind.
func (s *DeviceBindingService) bind(ctx context.Context, session *domain.ProviderSession, displayName string) (*domain.AuthResult, error) {
	existing, err := s.findByPhone(ctx, session.Phone)
	if err != nil {
		s.abandon(ctx, session)
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if existing != nil {
		return s.login(ctx, session, existing)
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		s.abandon(ctx, session)
		return nil, domain.NewAuthError(domain.ReasonNameRequired, "")
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:          session.Subject,
		Name:        name,
		Phone:       session.Phone,
		DeviceID:    s.DeviceID(ctx),
		Device:      s.DeviceDescriptor(ctx),
		IsVerified:  true,
		IsActive:    true,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	stored, created, err := s.users.CreateIfAbsent(ctx, user)
	if err != nil {
		s.abandon(ctx, session)
		return nil, fmt.Errorf("create account: %w", err)
	}
	if !created {
		// Another device registered the number first
		return s.login(ctx, session, stored)
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent, stored.ID).
		WithPhone(stored.Phone).WithDevice(stored.DeviceID).WithSession(session.ID))
	return &domain.AuthResult{User: stored, Session: session, IsNewUser: true}, nil
}

func (s *DeviceBindingService) login(ctx context.Context, session *domain.ProviderSession, user *domain.User) (*domain.AuthResult, error) {
	deviceID := s.DeviceID(ctx)
	if !user.BoundTo(deviceID) {
		s.abandon(ctx, session)
		s.logEvent(ctx, domain.NewAuditEvent(domain.DeviceMismatchEvent, user.ID).
			WithPhone(user.Phone).WithDevice(deviceID).WithMetadata("stage", "verify"))
		return nil, domain.DeviceMismatchError(user.Device)
	}

	now := s.now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login")
	} else {
		user.LastLoginAt = now
		user.IsActive = true
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).
		WithPhone(user.Phone).WithDevice(deviceID).WithSession(session.ID))
	return &domain.AuthResult{User: user, Session: session}, nil
}

// findByPhone returns nil without error when no account exists. Lookups denied
// before authentication count as no account.
func (s *DeviceBindingService) findByPhone(ctx context.Context, e164 string) (*domain.User, error) {
	user, err := s.users.FindByPhone(ctx, e164)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrPermissionDenied):
		return nil, nil
	default:
		return nil, err
	}
}

func (s *DeviceBindingService) abandon(ctx context.Context, session *domain.ProviderSession) {
	if err := s.provider.SignOut(ctx, session.IDToken); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to sign out rejected session")
	}
}

func (s *DeviceBindingService) logEvent(ctx context.Context, event *domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	_ = s.audit.LogEvent(ctx, event)
}
