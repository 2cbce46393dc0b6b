package notifications

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/peekpark/peekpark/domain"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go/client"
)

func TestClassifySMSError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected domain.ProviderCode
	}{
		{name: "rate limited", err: &client.TwilioRestError{Code: 20429, Status: 429}, expected: domain.CodeTooManyRequests},
		{name: "verify max send attempts", err: &client.TwilioRestError{Code: 60203, Status: 429}, expected: domain.CodeTooManyRequests},
		{name: "invalid to number", err: &client.TwilioRestError{Code: 21211, Status: 400}, expected: domain.CodeInvalidPhoneNumber},
		{name: "not a mobile number", err: &client.TwilioRestError{Code: 21614, Status: 400}, expected: domain.CodeInvalidPhoneNumber},
		{name: "queue overflow", err: &client.TwilioRestError{Code: 21611, Status: 400}, expected: domain.CodeQuotaExceeded},
		{name: "region disabled", err: &client.TwilioRestError{Code: 21408, Status: 400}, expected: domain.CodeOperationNotAllowed},
		{name: "suspended account", err: &client.TwilioRestError{Code: 20005, Status: 401}, expected: domain.CodeBillingNotEnabled},
		{name: "trial account restriction", err: &client.TwilioRestError{Code: 21608, Status: 400}, expected: domain.CodeBillingNotEnabled},
		{name: "server error", err: &client.TwilioRestError{Code: 20500, Status: 500}, expected: domain.CodeNetworkRequestFailed},
		{name: "unmapped client error", err: &client.TwilioRestError{Code: 21606, Status: 400}, expected: domain.CodeInternalError},
		{name: "wrapped rest error", err: fmt.Errorf("failed to send SMS: %w", &client.TwilioRestError{Code: 21211, Status: 400}), expected: domain.CodeInvalidPhoneNumber},
		{name: "network error", err: fmt.Errorf("failed to send SMS: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")}), expected: domain.CodeNetworkRequestFailed},
		{name: "anything else", err: errors.New("boom"), expected: domain.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySMSError(tt.err); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTwilioServiceImpl_SendSMS_MockWithoutFromNumber(t *testing.T) {
	svc := NewTwilioService("", "", "", zerolog.Nop())
	if err := svc.SendSMS("+971501234567", "Your PeekPark code is 123456"); err != nil {
		t.Fatalf("expected mock send to succeed, got %v", err)
	}
}
