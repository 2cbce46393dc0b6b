package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/infrastructure/database"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Revocation reasons published on the feed
const (
	RevokedSignedOut          = "signed_out"
	RevokedSignedOutElsewhere = "signed_out_elsewhere"
)

// PhoneAuthProvider implements domain.IdentityProvider over the OTP service,
// the provider session store and the revocation feed
type PhoneAuthProvider struct {
	otp      domain.OTPService
	sessions domain.SessionRepository
	tokens   domain.TokenService
	feed     domain.RevocationFeed
	redis    *redis.Client
	log      zerolog.Logger
	now      func() time.Time
}

var _ domain.IdentityProvider = (*PhoneAuthProvider)(nil)

// NewPhoneAuthProvider creates the phone verification provider
func NewPhoneAuthProvider(
	otp domain.OTPService,
	sessions domain.SessionRepository,
	tokens domain.TokenService,
	feed domain.RevocationFeed,
	redisClient *redis.Client,
	logger zerolog.Logger,
) *PhoneAuthProvider {
	return &PhoneAuthProvider{
		otp:      otp,
		sessions: sessions,
		tokens:   tokens,
		feed:     feed,
		redis:    redisClient,
		log:      logger.With().Str("component", "provider").Logger(),
		now:      time.Now,
	}
}

func subjectKey(phone string) string { return "subject:" + phone }

// StartPhoneVerification sends a one-time code to an E.164 phone number
func (p *PhoneAuthProvider) StartPhoneVerification(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
	return p.otp.Issue(ctx, phone)
}

// ConfirmPhoneVerification checks code against challenge and opens a provider session
func (p *PhoneAuthProvider) ConfirmPhoneVerification(ctx context.Context, challenge *domain.OTPChallenge, code string) (*domain.ProviderSession, error) {
	if challenge == nil || challenge.ID == "" {
		return nil, domain.NewProviderError(domain.CodeInvalidVerificationID, nil)
	}

	phone, err := p.otp.Confirm(ctx, challenge.ID, code)
	if err != nil {
		return nil, err
	}
	if phone != challenge.Phone {
		return nil, domain.NewProviderError(domain.CodeInvalidVerificationID,
			errors.New("challenge was issued for another number"))
	}

	// Subjects are stable per phone number
	subject, _, err := database.SetNX(ctx, p.redis, subjectKey(phone), uuid.NewString(), 0)
	if err != nil {
		return nil, domain.NewProviderError(domain.CodeNetworkRequestFailed, fmt.Errorf("resolve subject: %w", err))
	}

	now := p.now().UTC()
	session := &domain.ProviderSession{
		ID:        uuid.NewString(),
		Subject:   subject,
		Phone:     phone,
		CreatedAt: now,
		ExpiresAt: now.Add(p.tokens.TTL()),
	}
	if err := p.sessions.Create(ctx, session); err != nil {
		return nil, domain.NewProviderError(domain.CodeNetworkRequestFailed, fmt.Errorf("create session: %w", err))
	}

	token, err := p.tokens.GenerateIDToken(session)
	if err != nil {
		_ = p.sessions.Delete(ctx, session.ID)
		return nil, fmt.Errorf("sign id token: %w", err)
	}
	session.IDToken = token

	p.log.Debug().Str("session_id", session.ID).Str("subject", subject).Msg("session opened")
	return session, nil
}

// SignOut ends the session behind idToken. Expired tokens are accepted.
func (p *PhoneAuthProvider) SignOut(ctx context.Context, idToken string) error {
	claims, err := p.tokens.ParseIDToken(idToken)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	if err := p.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	return p.feed.Publish(ctx, domain.RevocationEvent{
		SessionID: claims.SessionID,
		Subject:   claims.Subject,
		Reason:    RevokedSignedOut,
		At:        p.now().UTC(),
	})
}

// RevokeSubject ends every session of subject and reports how many were open
func (p *PhoneAuthProvider) RevokeSubject(ctx context.Context, subject string) (int, error) {
	ids, err := p.sessions.DeleteBySubject(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("revoke subject: %w", err)
	}

	err = p.feed.Publish(ctx, domain.RevocationEvent{
		Subject: subject,
		Reason:  RevokedSignedOutElsewhere,
		At:      p.now().UTC(),
	})
	if err != nil {
		return len(ids), err
	}

	p.log.Info().Str("subject", subject).Int("sessions", len(ids)).Msg("subject revoked")
	return len(ids), nil
}

// WatchRevocations calls fn for every revocation until the returned function is called
func (p *PhoneAuthProvider) WatchRevocations(ctx context.Context, fn func(domain.RevocationEvent)) (func(), error) {
	return p.feed.Subscribe(ctx, fn)
}
