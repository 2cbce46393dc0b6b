package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Repository errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrPermissionDenied  = errors.New("permission denied")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// Local store errors
var (
	ErrStoreUnavailable = errors.New("local store unavailable")
)

// Reason is the fixed failure taxonomy surfaced to the presentation layer
type Reason string

const (
	ReasonValidation          Reason = "validation_error"
	ReasonDeviceMismatch      Reason = "device_mismatch"
	ReasonInvalidOrExpiredOTP Reason = "invalid_or_expired_code"
	ReasonNameRequired        Reason = "name_required"
	ReasonRateLimited         Reason = "rate_limited"
	ReasonQuotaExceeded       Reason = "quota_exceeded"
	ReasonProviderDisabled    Reason = "provider_disabled"
	ReasonBillingRequired     Reason = "billing_required"
	ReasonServiceUnavailable  Reason = "service_unavailable"
	ReasonUnknown             Reason = "unknown"
)

var reasonMessages = map[Reason]string{
	ReasonValidation:          "Please enter a valid UAE mobile number (9 digits starting with 50, 51, 52, 54, 55, 56, or 58).",
	ReasonDeviceMismatch:      "This account is registered on another device. Please use the original device to login.",
	ReasonInvalidOrExpiredOTP: "Invalid OTP. Please try again.",
	ReasonNameRequired:        "Name is required for new users.",
	ReasonRateLimited:         "Too many requests. Please try again later.",
	ReasonQuotaExceeded:       "SMS quota exceeded. Please try again later.",
	ReasonProviderDisabled:    "Phone authentication is not enabled for this app.",
	ReasonBillingRequired:     "Phone authentication requires billing to be enabled for this app.",
	ReasonServiceUnavailable:  "Service temporarily unavailable. Please try again later.",
	ReasonUnknown:             "An unknown error occurred. Please try again.",
}

// Message returns the human-readable message for the reason
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return reasonMessages[ReasonUnknown]
}

// ProviderCode is a provider-specific failure code
type ProviderCode string

const (
	CodeInvalidPhoneNumber      ProviderCode = "invalid-phone-number"
	CodeTooManyRequests         ProviderCode = "too-many-requests"
	CodeQuotaExceeded           ProviderCode = "quota-exceeded"
	CodeOperationNotAllowed     ProviderCode = "operation-not-allowed"
	CodeBillingNotEnabled       ProviderCode = "billing-not-enabled"
	CodeInvalidVerificationCode ProviderCode = "invalid-verification-code"
	CodeInvalidVerificationID   ProviderCode = "invalid-verification-id"
	CodeCodeExpired             ProviderCode = "code-expired"
	CodeNetworkRequestFailed    ProviderCode = "network-request-failed"
	CodeInternalError           ProviderCode = "internal-error"
)

// ProviderError is an expected failure reported by the identity provider
type ProviderError struct {
	Code ProviderCode
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider: %s: %v", e.Code, e.Err)
	}
	return "provider: " + string(e.Code)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError creates a provider error with an optional cause
func NewProviderError(code ProviderCode, err error) *ProviderError {
	return &ProviderError{Code: code, Err: err}
}

// ReasonForProviderCode maps provider codes onto the failure taxonomy
func ReasonForProviderCode(code ProviderCode) Reason {
	switch code {
	case CodeInvalidPhoneNumber:
		return ReasonValidation
	case CodeTooManyRequests:
		return ReasonRateLimited
	case CodeQuotaExceeded:
		return ReasonQuotaExceeded
	case CodeOperationNotAllowed:
		return ReasonProviderDisabled
	case CodeBillingNotEnabled:
		return ReasonBillingRequired
	case CodeInvalidVerificationCode, CodeInvalidVerificationID, CodeCodeExpired:
		return ReasonInvalidOrExpiredOTP
	case CodeNetworkRequestFailed:
		return ReasonServiceUnavailable
	default:
		return ReasonUnknown
	}
}

// AuthError is a tagged authentication rejection
type AuthError struct {
	Reason Reason
	Code   ProviderCode
	Device *DeviceDescriptor
	Detail string
	Err    error
}

func (e *AuthError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Reason))
	if e.Code != "" {
		b.WriteString(" (" + string(e.Code) + ")")
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message returns the single user-facing message for the rejection
func (e *AuthError) Message() string {
	switch {
	case e.Reason == ReasonDeviceMismatch && e.Device != nil:
		return fmt.Sprintf("This account is linked to another device. Device: %s (%s %s)",
			orUnknown(e.Device.DeviceName), orUnknown(e.Device.Manufacturer), orUnknown(e.Device.ModelName))
	case e.Reason == ReasonInvalidOrExpiredOTP && e.Code == CodeCodeExpired:
		return "OTP has expired. Please request a new one."
	case e.Reason == ReasonValidation && e.Detail != "":
		return e.Detail
	}
	return e.Reason.Message()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// NewAuthError creates an AuthError for the given reason
func NewAuthError(reason Reason, detail string) *AuthError {
	return &AuthError{Reason: reason, Detail: detail}
}

// DeviceMismatchError creates a rejection carrying the bound device's descriptor
func DeviceMismatchError(bound DeviceDescriptor) *AuthError {
	return &AuthError{Reason: ReasonDeviceMismatch, Device: &bound}
}

// AuthErrorFromProvider translates a provider error into the taxonomy
func AuthErrorFromProvider(err *ProviderError) *AuthError {
	return &AuthError{Reason: ReasonForProviderCode(err.Code), Code: err.Code, Err: err}
}

// AsAuthError converts any error into an AuthError. Unexpected errors become ReasonUnknown.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return AuthErrorFromProvider(provErr)
	}
	return &AuthError{Reason: ReasonUnknown, Err: err}
}
