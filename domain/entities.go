package domain

import "time"

// User represents one registered person/device pairing
type User struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email,omitempty"`
	PhotoURL    string           `json:"photo_url,omitempty"`
	DeviceID    string           `json:"device_id"`
	Device      DeviceDescriptor `json:"device_info"`
	IsVerified  bool             `json:"is_verified"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	LastLoginAt time.Time        `json:"last_login_at"`
	IsLoggedIn  bool             `json:"is_logged_in"`
}

// BoundTo reports whether the account is bound to the given device
func (u *User) BoundTo(deviceID string) bool {
	return u.DeviceID == deviceID
}

// DeviceDescriptor describes the device an account is bound to
type DeviceDescriptor struct {
	DeviceName   string `json:"device_name"`
	DeviceType   string `json:"device_type"`
	OSVersion    string `json:"os_version"`
	ModelName    string `json:"model_name"`
	Manufacturer string `json:"manufacturer"`
	Brand        string `json:"brand"`
	AppVersion   string `json:"app_version"`
}

// OTPChallenge is one in-progress phone verification attempt
type OTPChallenge struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the challenge is past its expiry at the given instant
func (c *OTPChallenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ProviderSession is the identity provider's authenticated session
type ProviderSession struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Phone     string    `json:"phone"`
	IDToken   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResult represents a successful phone verification
type AuthResult struct {
	User      *User
	Session   *ProviderSession
	IsNewUser bool
}

// SessionRecord is the locally persisted session
type SessionRecord struct {
	User      User      `json:"user"`
	SessionID string    `json:"session_id"`
	IDToken   string    `json:"id_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RevocationEvent is published by the provider whenever a session stops being valid.
// An empty SessionID revokes every session of Subject.
type RevocationEvent struct {
	SessionID string    `json:"session_id,omitempty"`
	Subject   string    `json:"subject"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// Matches reports whether the event invalidates the given session
func (e RevocationEvent) Matches(sessionID, subject string) bool {
	if e.SessionID != "" {
		return e.SessionID == sessionID
	}
	return e.Subject != "" && e.Subject == subject
}

// TokenClaims represents ID token claims
type TokenClaims struct {
	Subject   string `json:"sub"`
	SessionID string `json:"sid"`
	Phone     string `json:"phone"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
