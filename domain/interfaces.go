package domain

import (
	"context"
	"time"
)

// UserRepository is the users document store
type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// CreateIfAbsent writes user unless an account already exists for its phone.
	// It returns the stored document and whether this call created it.
	CreateIfAbsent(ctx context.Context, user *User) (*User, bool, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// SessionRepository stores provider-side sessions
type SessionRepository interface {
	Create(ctx context.Context, session *ProviderSession) error
	FindByID(ctx context.Context, sessionID string) (*ProviderSession, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteBySubject(ctx context.Context, subject string) ([]string, error)
}

// IdentityProvider is the phone verification provider
type IdentityProvider interface {
	StartPhoneVerification(ctx context.Context, phone string) (*OTPChallenge, error)
	ConfirmPhoneVerification(ctx context.Context, challenge *OTPChallenge, code string) (*ProviderSession, error)
	SignOut(ctx context.Context, idToken string) error
}

// RevocationFeed delivers provider session revocations
type RevocationFeed interface {
	Publish(ctx context.Context, event RevocationEvent) error
	// Subscribe registers fn and returns a function that unregisters it.
	// fn is invoked sequentially from a single goroutine.
	Subscribe(ctx context.Context, fn func(RevocationEvent)) (func(), error)
}

// OTPService issues and confirms one-time codes
type OTPService interface {
	Issue(ctx context.Context, phone string) (*OTPChallenge, error)
	Confirm(ctx context.Context, challengeID, code string) (string, error)
	CanResend(ctx context.Context, phone string) (bool, int64, error)
}

// LocalStore is the device's durable key-value store
type LocalStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// DeviceIdentity exposes the current device's binding identity
type DeviceIdentity interface {
	DeviceID(ctx context.Context) string
	Descriptor(ctx context.Context) DeviceDescriptor
}

// CodeHasher hashes one-time codes at rest
type CodeHasher interface {
	Hash(code string) (string, error)
	Verify(hashed, code string) bool
}

// TokenService issues and validates provider ID tokens
type TokenService interface {
	GenerateIDToken(session *ProviderSession) (string, error)
	ValidateIDToken(token string) (*TokenClaims, error)
	// ParseIDToken returns the claims of a correctly signed token even when it has expired.
	ParseIDToken(token string) (*TokenClaims, error)
	TTL() time.Duration
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}
