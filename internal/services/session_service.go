package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/metrics"
	"github.com/rs/zerolog"
)

// SessionKey is the local store key holding the current session
const SessionKey = "user"

// AttemptState is the state of the current sign-in attempt
type AttemptState string

const (
	StateIdle               AttemptState = "idle"
	StateChallengeRequested AttemptState = "challenge_requested"
	StateCodeSubmitted      AttemptState = "code_submitted"
	StateAuthenticated      AttemptState = "authenticated"
	StateRejected           AttemptState = "rejected"
)

// DeviceBinding is the identity layer the orchestrator drives
type DeviceBinding interface {
	RequestOTP(ctx context.Context, phone string) (*domain.OTPChallenge, error)
	VerifyOTP(ctx context.Context, phone string, challenge *domain.OTPChallenge, code, displayName string) (*domain.AuthResult, error)
	SignOut(ctx context.Context, idToken string) error
}

var _ DeviceBinding = (*DeviceBindingService)(nil)

// SendOTPResult is returned to the presentation layer after a code was sent
type SendOTPResult struct {
	ChallengeID string    `json:"challenge_id"`
	Phone       string    `json:"phone"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SessionService owns the single current session of this device
type SessionService struct {
	identity DeviceBinding
	store    domain.LocalStore
	feed     domain.RevocationFeed
	metrics  *metrics.Metrics
	audit    domain.AuditLogger
	log      zerolog.Logger

	// opMu serializes operations; mu guards the fields below it
	opMu      sync.Mutex
	mu        sync.RWMutex
	record    *domain.SessionRecord
	challenge *domain.OTPChallenge
	state     AttemptState
	stop      func()
}

// NewSessionService creates the auth session orchestrator. feed, metrics and audit may be nil.
func NewSessionService(
	identity DeviceBinding,
	store domain.LocalStore,
	feed domain.RevocationFeed,
	m *metrics.Metrics,
	audit domain.AuditLogger,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		identity: identity,
		store:    store,
		feed:     feed,
		metrics:  m,
		audit:    audit,
		log:      logger.With().Str("component", "session").Logger(),
		state:    StateIdle,
	}
}

// Start restores a persisted session and subscribes to revocations
func (s *SessionService) Start(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	record, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	if record != nil {
		record.User.IsLoggedIn = true
		s.record = record
		s.state = StateAuthenticated
		s.log.Info().Str("user_id", record.User.ID).Msg("session restored")
	}
	s.mu.Unlock()
	s.setActive(record != nil)

	s.mu.RLock()
	subscribed := s.stop != nil
	s.mu.RUnlock()
	if s.feed == nil || subscribed {
		return nil
	}
	stop, err := s.feed.Subscribe(ctx, s.onRevocation)
	if err != nil {
		return fmt.Errorf("subscribe to revocations: %w", err)
	}
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
	return nil
}

// Stop unregisters the revocation subscription
func (s *SessionService) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// SendOTP requests a code for phone and holds the challenge for the attempt
func (s *SessionService) SendOTP(ctx context.Context, phone string) (*SendOTPResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	challenge, err := s.identity.RequestOTP(ctx, phone)
	if err != nil {
		authErr := domain.AsAuthError(err)
		s.mu.Lock()
		s.state = StateRejected
		s.mu.Unlock()
		s.countRequest(authErr)
		return nil, authErr
	}

	s.mu.Lock()
	s.challenge = challenge
	s.state = StateChallengeRequested
	s.mu.Unlock()
	s.countRequest(nil)

	return &SendOTPResult{ChallengeID: challenge.ID, Phone: challenge.Phone, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerifyOTP submits code for the held challenge and persists the session on success
func (s *SessionService) VerifyOTP(ctx context.Context, challengeID, code, displayName string) (*domain.AuthResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	challenge := s.challenge
	s.mu.RUnlock()

	if challenge == nil || challenge.ID != challengeID {
		err := domain.AuthErrorFromProvider(domain.NewProviderError(domain.CodeInvalidVerificationID, nil))
		s.countVerification(err)
		return nil, err
	}

	s.mu.Lock()
	s.state = StateCodeSubmitted
	s.mu.Unlock()

	result, err := s.identity.VerifyOTP(ctx, challenge.Phone, challenge, code, displayName)
	if err != nil {
		authErr := domain.AsAuthError(err)
		s.mu.Lock()
		if retryable(authErr) {
			s.state = StateChallengeRequested
		} else {
			s.challenge = nil
			s.state = StateRejected
		}
		s.mu.Unlock()
		s.countVerification(authErr)
		return nil, authErr
	}

	user := *result.User
	user.IsLoggedIn = true
	record := &domain.SessionRecord{
		User:      user,
		SessionID: result.Session.ID,
		IDToken:   result.Session.IDToken,
		ExpiresAt: result.Session.ExpiresAt,
	}

	s.mu.RLock()
	previous := s.record
	s.mu.RUnlock()
	if previous != nil && previous.IDToken != "" && previous.SessionID != record.SessionID {
		if err := s.identity.SignOut(ctx, previous.IDToken); err != nil {
			s.log.Warn().Err(err).Str("user_id", previous.User.ID).Msg("failed to sign out replaced session")
		}
	}

	s.mu.Lock()
	if err := s.save(ctx, record); err != nil {
		s.log.Error().Err(err).Msg("failed to persist session")
	}
	s.record = record
	s.challenge = nil
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.countVerification(nil)
	s.setActive(true)

	result.User = &record.User
	return result, nil
}

// Logout signs the current session out and clears local state. Provider failures are logged.
func (s *SessionService) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	record := s.record
	s.mu.RUnlock()

	if record != nil && record.IDToken != "" {
		if err := s.identity.SignOut(ctx, record.IDToken); err != nil {
			s.log.Warn().Err(err).Msg("provider sign-out failed")
		}
	}

	s.mu.Lock()
	s.clear(ctx)
	s.mu.Unlock()

	if record != nil {
		s.logEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, record.User.ID).WithSession(record.SessionID))
		if s.metrics != nil {
			s.metrics.Logouts.Inc()
		}
	}
	s.setActive(false)
}

// CurrentUser returns the signed-in user
func (s *SessionService) CurrentUser() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.record == nil {
		return nil, false
	}
	user := s.record.User
	return &user, true
}

// State returns the state of the current attempt
func (s *SessionService) State() AttemptState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// onRevocation runs on the feed's goroutine, possibly while an operation holds opMu
func (s *SessionService) onRevocation(event domain.RevocationEvent) {
	s.mu.Lock()
	record := s.record
	if record == nil || !event.Matches(record.SessionID, record.User.ID) {
		s.mu.Unlock()
		return
	}
	ctx := context.Background()
	s.clear(ctx)
	s.mu.Unlock()

	s.log.Info().Str("user_id", record.User.ID).Str("reason", event.Reason).Msg("session revoked")
	s.logEvent(ctx, domain.NewAuditEvent(domain.SessionRevokedEvent, record.User.ID).
		WithSession(record.SessionID).WithMetadata("reason", event.Reason))
	if s.metrics != nil {
		s.metrics.Revocations.WithLabelValues(event.Reason).Inc()
	}
	s.setActive(false)
}

// clear drops in-memory and persisted session state. Callers hold mu.
func (s *SessionService) clear(ctx context.Context) {
	if err := s.store.RemoveItem(ctx, SessionKey); err != nil {
		s.log.Warn().Err(err).Msg("failed to remove persisted session")
	}
	s.record = nil
	s.challenge = nil
	s.state = StateIdle
}

func (s *SessionService) load(ctx context.Context) (*domain.SessionRecord, error) {
	raw, ok, err := s.store.GetItem(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			s.log.Warn().Err(err).Msg("local store unreadable, starting signed out")
			return nil, nil
		}
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var record domain.SessionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record.User.ID == "" {
		s.log.Warn().Msg("discarding corrupt session record")
		if err := s.store.RemoveItem(ctx, SessionKey); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &record, nil
}

func (s *SessionService) save(ctx context.Context, record *domain.SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.store.SetItem(ctx, SessionKey, string(data))
}

// retryable reports whether the held challenge may be used again after err
func retryable(err *domain.AuthError) bool {
	return err.Reason == domain.ReasonValidation || err.Code == domain.CodeInvalidVerificationCode
}

func (s *SessionService) countRequest(err *domain.AuthError) {
	if s.metrics != nil {
		s.metrics.OTPRequests.WithLabelValues(outcome(err)).Inc()
	}
}

func (s *SessionService) countVerification(err *domain.AuthError) {
	if s.metrics != nil {
		s.metrics.OTPVerifications.WithLabelValues(outcome(err)).Inc()
	}
}

func (s *SessionService) setActive(active bool) {
	if s.metrics == nil {
		return
	}
	if active {
		s.metrics.SessionActive.Set(1)
	} else {
		s.metrics.SessionActive.Set(0)
	}
}

func (s *SessionService) logEvent(ctx context.Context, event *domain.AuditEvent) {
	if s.audit != nil {
		_ = s.audit.LogEvent(ctx, event)
	}
}

func outcome(err *domain.AuthError) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case err.Reason == domain.ReasonUnknown || err.Reason == domain.ReasonServiceUnavailable:
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}
