package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/peekpark/peekpark/domain"
	"github.com/redis/go-redis/v9"
)

// OTPServiceImpl implements domain.OTPService using Redis persistence
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	hasher          domain.CodeHasher
	redisClient     *redis.Client
	config          OTPConfig
}

type OTPConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// NewOTPService creates a new Redis-based OTP service
func NewOTPService(notificationSvc domain.NotificationService, hasher domain.CodeHasher, redisClient *redis.Client, config OTPConfig) *OTPServiceImpl {
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		hasher:          hasher,
		redisClient:     redisClient,
		config:          config,
	}
}

var _ domain.OTPService = (*OTPServiceImpl)(nil)

func otpKey(challengeID string) string      { return "otp:" + challengeID }
func attemptsKey(challengeID string) string { return "otp:att:" + challengeID }
func resendKey(phone string) string         { return "otp:res:" + phone }

// Issue implements domain.OTPService with Redis persistence
func (s *OTPServiceImpl) Issue(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
	// Check resend throttle
	canResend, waitTime, err := s.CanResend(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !canResend {
		return nil, domain.NewProviderError(domain.CodeTooManyRequests,
			fmt.Errorf("please wait %d seconds before requesting new OTP", waitTime))
	}

	// Generate secure OTP code
	code, err := s.generateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}
	hashed, err := s.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP code: %w", err)
	}

	challenge := &domain.OTPChallenge{
		ID:        uuid.NewString(),
		Phone:     phone,
		ExpiresAt: time.Now().Add(s.config.TTL),
	}
	key, attKey, resKey := otpKey(challenge.ID), attemptsKey(challenge.ID), resendKey(phone)

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "phone", phone, "code", hashed)
		pipe.Expire(ctx, key, s.config.TTL)
		pipe.Set(ctx, attKey, 0, s.config.TTL)
		pipe.Set(ctx, resKey, 1, s.config.ResendWindow)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store OTP in Redis: %w", err)
	}

	// Send SMS notification
	message := fmt.Sprintf("Your PeekPark verification code is: %s. Valid for %d seconds.", code, int(s.config.TTL.Seconds()))
	if err := s.notificationSvc.SendSMS(phone, message); err != nil {
		// Clean up Redis entries if SMS fails
		s.redisClient.Del(ctx, key, attKey, resKey)
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) {
			return nil, provErr
		}
		return nil, domain.NewProviderError(domain.CodeInternalError, fmt.Errorf("failed to send OTP SMS: %w", err))
	}

	return challenge, nil
}

// Confirm implements domain.OTPService and returns the phone the challenge was issued for
func (s *OTPServiceImpl) Confirm(ctx context.Context, challengeID, code string) (string, error) {
	if _, err := uuid.Parse(challengeID); err != nil {
		return "", domain.NewProviderError(domain.CodeInvalidVerificationID, err)
	}
	key, attKey := otpKey(challengeID), attemptsKey(challengeID)

	stored, err := s.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get OTP from Redis: %w", err)
	}
	if len(stored) == 0 {
		return "", domain.NewProviderError(domain.CodeCodeExpired, nil)
	}

	// Increment attempts counter atomically
	attempts, err := s.redisClient.Incr(ctx, attKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment attempts: %w", err)
	}

	// Check max attempts
	if attempts > int64(s.config.MaxAttempts) {
		s.redisClient.Del(ctx, key, attKey)
		return "", domain.NewProviderError(domain.CodeTooManyRequests, errors.New("maximum OTP attempts exceeded"))
	}

	if !s.hasher.Verify(stored["code"], code) {
		return "", domain.NewProviderError(domain.CodeInvalidVerificationCode, nil)
	}

	// Success - clean up Redis entries
	s.redisClient.Del(ctx, key, attKey)

	return stored["phone"], nil
}

// CanResend implements domain.OTPService with Redis-based throttling
func (s *OTPServiceImpl) CanResend(ctx context.Context, phone string) (bool, int64, error) {
	ttl, err := s.redisClient.TTL(ctx, resendKey(phone)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check resend TTL: %w", err)
	}

	// If TTL <= 0, key doesn't exist or has expired - can resend
	if ttl <= 0 {
		return true, 0, nil
	}

	// Must wait for TTL to expire
	return false, int64(ttl.Seconds()), nil
}

// generateSecureCode generates a cryptographically secure OTP code
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
