package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/peekpark/peekpark/domain"
	"github.com/redis/go-redis/v9"
)

// SessionRepositoryImpl implements domain.SessionRepository using Redis.
// Each subject has a set of its session ids so they can be revoked together.
type SessionRepositoryImpl struct {
	client        *redis.Client
	prefix        string
	subjectPrefix string
	ttl           time.Duration
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client *redis.Client, ttl time.Duration) domain.SessionRepository {
	return &SessionRepositoryImpl{
		client:        client,
		prefix:        "session:",
		subjectPrefix: "session:subject:",
		ttl:           ttl,
	}
}

func (r *SessionRepositoryImpl) ttlFor(session *domain.ProviderSession) time.Duration {
	if !session.ExpiresAt.IsZero() {
		if d := time.Until(session.ExpiresAt); d > 0 {
			return d
		}
	}
	return r.ttl
}

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.ProviderSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := r.ttlFor(session)
	subjectKey := r.subjectPrefix + session.Subject

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.prefix+session.ID, data, ttl)
		pipe.SAdd(ctx, subjectKey, session.ID)
		pipe.Expire(ctx, subjectKey, ttl)
		return nil
	})
	return err
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.ProviderSession, error) {
	key := r.prefix + sessionID
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.ProviderSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(time.Now()) {
		r.client.Del(ctx, key)
		return nil, domain.ErrSessionExpired
	}

	return &session, nil
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	session, err := r.FindByID(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrSessionExpired) {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.prefix+sessionID)
		if session != nil {
			pipe.SRem(ctx, r.subjectPrefix+session.Subject, sessionID)
		}
		return nil
	})
	return err
}

// DeleteBySubject implements domain.SessionRepository and returns the ids it removed
func (r *SessionRepositoryImpl) DeleteBySubject(ctx context.Context, subject string) ([]string, error) {
	subjectKey := r.subjectPrefix + subject
	ids, err := r.client.SMembers(ctx, subjectKey).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.prefix+id)
	}
	keys = append(keys, subjectKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
