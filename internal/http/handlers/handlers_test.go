package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/services"
	"github.com/stretchr/testify/require"
)

// fakeSessions implements SessionAPI for handler tests
type fakeSessions struct {
	SendOTPFunc     func(ctx context.Context, phone string) (*services.SendOTPResult, error)
	VerifyOTPFunc   func(ctx context.Context, challengeID, code, displayName string) (*domain.AuthResult, error)
	CurrentUserFunc func() (*domain.User, bool)

	logouts int
}

func (f *fakeSessions) SendOTP(ctx context.Context, phone string) (*services.SendOTPResult, error) {
	if f.SendOTPFunc != nil {
		return f.SendOTPFunc(ctx, phone)
	}
	return &services.SendOTPResult{ChallengeID: "challenge-1", Phone: phone}, nil
}

func (f *fakeSessions) VerifyOTP(ctx context.Context, challengeID, code, displayName string) (*domain.AuthResult, error) {
	if f.VerifyOTPFunc != nil {
		return f.VerifyOTPFunc(ctx, challengeID, code, displayName)
	}
	return &domain.AuthResult{User: &domain.User{ID: "user-1", Name: displayName, IsLoggedIn: true}}, nil
}

func (f *fakeSessions) Logout(ctx context.Context) {
	f.logouts++
}

func (f *fakeSessions) CurrentUser() (*domain.User, bool) {
	if f.CurrentUserFunc != nil {
		return f.CurrentUserFunc()
	}
	return nil, false
}

func (f *fakeSessions) State() services.AttemptState { return services.StateChallengeRequested }

type envelope struct {
	Data  map[string]any `json:"data"`
	Error struct {
		Reason     string                   `json:"reason"`
		Message    string                   `json:"message"`
		DeviceInfo *domain.DeviceDescriptor `json:"device_info"`
	} `json:"error"`
}

func serve(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func init() {
	gin.SetMode(gin.TestMode)
}
