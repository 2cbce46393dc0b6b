package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/http/handlers"
	"github.com/peekpark/peekpark/internal/http/middleware"
	"github.com/peekpark/peekpark/internal/infrastructure/auth"
	"github.com/peekpark/peekpark/internal/metrics"
	"github.com/peekpark/peekpark/internal/mocks"
	"github.com/peekpark/peekpark/internal/parking"
	"github.com/peekpark/peekpark/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routerFixture serves the full router over a real session orchestrator driving mocked identity dependencies
type routerFixture struct {
	router   *gin.Engine
	provider *mocks.MockIdentityProvider
	users    *mocks.MockUserRepository
	store    *mocks.MockLocalStore
	sessions *services.SessionService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	device := mocks.NewMockDeviceIdentity("device-a")
	users := mocks.NewMockUserRepository()
	provider := mocks.NewMockIdentityProvider()
	provider.StartPhoneVerificationFunc = func(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
		return &domain.OTPChallenge{ID: "challenge-1", Phone: phone, ExpiresAt: time.Now().Add(time.Minute)}, nil
	}
	store := mocks.NewMockLocalStore()

	binding := services.NewDeviceBindingService(device, users, provider, mocks.NewMockAuditLogger(), zerolog.Nop())
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	sessions := services.NewSessionService(binding, store, nil, m, nil, zerolog.Nop())
	require.NoError(t, sessions.Start(context.Background()))

	casbinSvc, err := auth.NewCasbinService(nil)
	require.NoError(t, err)
	policy := services.NewPolicyService(casbinSvc.E)
	require.NoError(t, services.SeedPolicies(policy, auth.DefaultPolicies))

	router := BuildRouter(Handlers{
		Auth:    handlers.NewAuthHandlers(sessions),
		Device:  handlers.NewDeviceHandlers(device),
		Parking: handlers.NewParkingHandlers(parking.DefaultCatalog(), nil, time.Second),
	}, sessions, policy, m, zerolog.Nop())

	return &routerFixture{router: router, provider: provider, users: users, store: store, sessions: sessions}
}

func (f *routerFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	w, body := f.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_SignInFlow(t *testing.T) {
	f := newRouterFixture(t)

	w, _ := f.do(t, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "profile is closed while signed out")

	w, body := f.do(t, http.MethodPost, "/auth/otp/send", `{"phone":"50 123 4567"}`)
	require.Equal(t, http.StatusOK, w.Code, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "challenge-1", data["challenge_id"])
	assert.Equal(t, "+971501234567", data["phone"])

	w, body = f.do(t, http.MethodPost, "/auth/otp/verify", `{"challenge_id":"challenge-1","code":"123456","name":"Aisha"}`)
	require.Equal(t, http.StatusOK, w.Code, body)
	data = body["data"].(map[string]any)
	assert.Equal(t, true, data["is_new_user"])

	w, body = f.do(t, http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	me := body["data"].(map[string]any)
	assert.Equal(t, "Aisha", me["name"])
	assert.Equal(t, "device-a", me["device_id"])

	w, _ = f.do(t, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	_, _, signOuts := f.provider.Calls()
	assert.Equal(t, []string{"id-token-1"}, signOuts)

	w, _ = f.do(t, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, persisted := f.store.Get(services.SessionKey)
	assert.False(t, persisted)
}

func TestRouter_BoundElsewhere(t *testing.T) {
	f := newRouterFixture(t)
	f.users.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
		return &domain.User{ID: "user-1", Phone: phone, DeviceID: "device-b", Device: domain.DeviceDescriptor{DeviceName: "Galaxy"}}, nil
	}

	w, body := f.do(t, http.MethodPost, "/auth/otp/send", `{"phone":"501234567"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, string(domain.ReasonDeviceMismatch), errBody["reason"])
	assert.Contains(t, errBody["message"], "Galaxy")
	start, _, _ := f.provider.Calls()
	assert.Zero(t, start)
}

func TestRouter_ParkingIsOpen(t *testing.T) {
	f := newRouterFixture(t)

	w, body := f.do(t, http.MethodGet, "/parking/lots?lat=25.2048&lon=55.2708&limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["lots"], 3)
	assert.Equal(t, "Downtown Dubai", data["district"])

	w, _ = f.do(t, http.MethodGet, "/parking/types", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodGet, "/device", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	f := newRouterFixture(t)
	f.do(t, http.MethodGet, "/parking/types", "")

	w, _ := f.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "peekpark_")
}
