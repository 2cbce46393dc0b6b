package notifications

import (
	"errors"
	"fmt"
	"net"

	"github.com/peekpark/peekpark/domain"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioServiceImpl implements domain.NotificationService
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
	log        zerolog.Logger
}

// NewTwilioService creates a new Twilio notification service
func NewTwilioService(accountSID, authToken, fromNumber string, logger zerolog.Logger) domain.NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
		log:        logger.With().Str("component", "sms").Logger(),
	}
}

// SendSMS implements domain.NotificationService. Delivery failures are returned as
// *domain.ProviderError carrying the classified code.
func (t *TwilioServiceImpl) SendSMS(to, message string) error {
	// If credentials are not configured, log instead of sending
	if t.fromNumber == "" {
		t.log.Info().Str("to", to).Str("message", message).Msg("[MOCK SMS]")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return domain.NewProviderError(ClassifySMSError(err), fmt.Errorf("failed to send SMS: %w", err))
	}
	if resp != nil && resp.Sid != nil {
		t.log.Debug().Str("sid", *resp.Sid).Msg("sms queued")
	}

	return nil
}

// ClassifySMSError maps a delivery failure onto a provider failure code.
// See https://www.twilio.com/docs/api/errors for the numeric codes.
func ClassifySMSError(err error) domain.ProviderCode {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) {
		switch restErr.Code {
		case 20429, 14107, 60203:
			return domain.CodeTooManyRequests
		case 21211, 21614, 60200:
			return domain.CodeInvalidPhoneNumber
		case 21611:
			return domain.CodeQuotaExceeded
		case 21408, 21610:
			return domain.CodeOperationNotAllowed
		case 20005, 21608:
			return domain.CodeBillingNotEnabled
		}
		if restErr.Status >= 500 {
			return domain.CodeNetworkRequestFailed
		}
		if restErr.Status == 429 {
			return domain.CodeTooManyRequests
		}
		return domain.CodeInternalError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.CodeNetworkRequestFailed
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.CodeNetworkRequestFailed
	}
	return domain.CodeInternalError
}
