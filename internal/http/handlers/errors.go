package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
)

// statusFor maps a rejection reason to its HTTP status
func statusFor(reason domain.Reason) int {
	switch reason {
	case domain.ReasonValidation:
		return http.StatusBadRequest
	case domain.ReasonNameRequired:
		return http.StatusUnprocessableEntity
	case domain.ReasonInvalidOrExpiredOTP:
		return http.StatusUnauthorized
	case domain.ReasonDeviceMismatch:
		return http.StatusConflict
	case domain.ReasonRateLimited, domain.ReasonQuotaExceeded:
		return http.StatusTooManyRequests
	case domain.ReasonProviderDisabled:
		return http.StatusForbidden
	case domain.ReasonBillingRequired:
		return http.StatusPaymentRequired
	case domain.ReasonServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": {"reason", "message", "device_info"?}}
func writeError(c *gin.Context, err error) {
	authErr := domain.AsAuthError(err)

	body := gin.H{
		"reason":  authErr.Reason,
		"message": authErr.Message(),
	}
	if authErr.Reason == domain.ReasonDeviceMismatch && authErr.Device != nil {
		body["device_info"] = authErr.Device
	}
	c.JSON(statusFor(authErr.Reason), gin.H{"error": body})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"reason": domain.ReasonValidation, "message": message}})
}
