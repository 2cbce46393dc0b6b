package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/services"
)

// SessionAPI is the session orchestrator as seen by the HTTP layer
type SessionAPI interface {
	SendOTP(ctx context.Context, phone string) (*services.SendOTPResult, error)
	VerifyOTP(ctx context.Context, challengeID, code, displayName string) (*domain.AuthResult, error)
	Logout(ctx context.Context)
	CurrentUser() (*domain.User, bool)
	State() services.AttemptState
}

var _ SessionAPI = (*services.SessionService)(nil)

// AuthHandlers handles the phone sign-in flow of this device
type AuthHandlers struct {
	sessions SessionAPI
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(sessions SessionAPI) *AuthHandlers {
	return &AuthHandlers{sessions: sessions}
}

// SendOTPRequest represents an OTP request
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyOTPRequest represents an OTP verification request. Name is only required for new users.
type VerifyOTPRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name"`
}

// SendOTP handles OTP requests
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domain.ReasonValidation.Message())
		return
	}

	result, err := h.sessions.SendOTP(c.Request.Context(), req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"challenge_id": result.ChallengeID,
			"phone":        result.Phone,
			"expires_at":   result.ExpiresAt,
			"state":        h.sessions.State(),
		},
	})
}

// VerifyOTP handles OTP verification
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please enter a valid 6-digit OTP")
		return
	}

	result, err := h.sessions.VerifyOTP(c.Request.Context(), req.ChallengeID, req.Code, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user":        result.User,
			"is_new_user": result.IsNewUser,
		},
	})
}

// Logout ends the device's session. It succeeds whether or not one exists.
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out successfully"}})
}

// Me returns the signed-in user
func (h *AuthHandlers) Me(c *gin.Context) {
	user, ok := h.sessions.CurrentUser()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"reason": "unauthenticated", "message": "Please sign in to continue."}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
