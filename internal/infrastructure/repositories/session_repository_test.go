package repositories

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/peekpark/peekpark/domain"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func newSession(id, subject string, ttl time.Duration) *domain.ProviderSession {
	return &domain.ProviderSession{
		ID:        id,
		Subject:   subject,
		Phone:     "+971501234567",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestSessionRepositoryImpl_Create(t *testing.T) {
	tests := []struct {
		name         string
		session      *domain.ProviderSession
		validateData func(t *testing.T, mr *miniredis.Miniredis, session *domain.ProviderSession)
	}{
		{
			name:    "successful session creation",
			session: newSession("session_123", "subj-1", time.Hour),
			validateData: func(t *testing.T, mr *miniredis.Miniredis, session *domain.ProviderSession) {
				key := "session:" + session.ID
				if !mr.Exists(key) {
					t.Error("expected session to exist in Redis")
				}
				if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Hour {
					t.Errorf("expected TTL within an hour, got %v", ttl)
				}
				members, err := mr.Members("session:subject:subj-1")
				if err != nil {
					t.Fatalf("subject index missing: %v", err)
				}
				if len(members) != 1 || members[0] != "session_123" {
					t.Errorf("unexpected subject index %v", members)
				}
			},
		},
		{
			name:    "ttl follows the session expiry",
			session: newSession("session_456", "subj-2", 30*time.Minute),
			validateData: func(t *testing.T, mr *miniredis.Miniredis, session *domain.ProviderSession) {
				ttl := mr.TTL("session:" + session.ID)
				if ttl > 30*time.Minute || ttl < 29*time.Minute {
					t.Errorf("expected TTL around 30m, got %v", ttl)
				}
			},
		},
		{
			name: "id token is not stored",
			session: func() *domain.ProviderSession {
				s := newSession("session_789", "subj-3", time.Hour)
				s.IDToken = "secret-token"
				return s
			}(),
			validateData: func(t *testing.T, mr *miniredis.Miniredis, session *domain.ProviderSession) {
				data, _ := mr.Get("session:" + session.ID)
				if data == "" {
					t.Fatal("expected stored session")
				}
				if strings.Contains(data, "secret-token") {
					t.Error("ID token must not be persisted with the session")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mr := setupTestRedis(t)
			repo := NewSessionRepository(client, time.Hour)

			if err := repo.Create(context.Background(), tt.session); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validateData(t, mr, tt.session)
		})
	}
}

func TestSessionRepositoryImpl_FindByID(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	if err := repo.Create(ctx, newSession("s1", "subj-1", time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindByID(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Subject != "subj-1" || found.Phone != "+971501234567" {
		t.Errorf("unexpected session %+v", found)
	}

	if _, err := repo.FindByID(ctx, "missing"); err != domain.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := repo.FindByID(ctx, "s1"); err != domain.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after TTL, got %v", err)
	}
}

func TestSessionRepositoryImpl_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	repo.Create(ctx, newSession("s1", "subj-1", time.Hour))
	repo.Create(ctx, newSession("s2", "subj-1", time.Hour))

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists("session:s1") {
		t.Error("expected s1 to be deleted")
	}
	members, _ := mr.Members("session:subject:subj-1")
	if len(members) != 1 || members[0] != "s2" {
		t.Errorf("expected only s2 in subject index, got %v", members)
	}

	if err := repo.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("deleting a missing session should succeed, got %v", err)
	}
}

func TestSessionRepositoryImpl_DeleteBySubject(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	repo.Create(ctx, newSession("s1", "subj-1", time.Hour))
	repo.Create(ctx, newSession("s2", "subj-1", time.Hour))
	repo.Create(ctx, newSession("s3", "subj-2", time.Hour))

	ids, err := repo.DeleteBySubject(ctx, "subj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Errorf("unexpected removed ids %v", ids)
	}
	if mr.Exists("session:s1") || mr.Exists("session:s2") || mr.Exists("session:subject:subj-1") {
		t.Error("expected subject sessions and index to be removed")
	}
	if !mr.Exists("session:s3") {
		t.Error("other subjects must be untouched")
	}

	ids, err = repo.DeleteBySubject(ctx, "nobody")
	if err != nil || len(ids) != 0 {
		t.Errorf("expected no ids and no error, got %v %v", ids, err)
	}
}
