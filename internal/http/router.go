package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/http/handlers"
	"github.com/peekpark/peekpark/internal/http/middleware"
	"github.com/peekpark/peekpark/internal/metrics"
	"github.com/rs/zerolog"
)

// Handlers groups the route handlers served by the local API
type Handlers struct {
	Auth    *handlers.AuthHandlers
	Device  *handlers.DeviceHandlers
	Parking *handlers.ParkingHandlers
}

// BuildRouter wires middleware and routes. m may be nil.
func BuildRouter(h Handlers, sessions middleware.CurrentUserReader, policy domain.PolicyService, m *metrics.Metrics, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))
	if m != nil {
		r.Use(m.Middleware())
	}
	r.Use(middleware.Session(sessions), middleware.NewCasbinMW(policy, log).Enforce())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/device", h.Device.Get)

	auth := r.Group("/auth")
	auth.POST("/otp/send", h.Auth.SendOTP)
	auth.POST("/otp/verify", h.Auth.VerifyOTP)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	p := r.Group("/parking")
	p.GET("/types", h.Parking.Types)
	p.GET("/lots", h.Parking.Lots)
	p.GET("/lots/:id", h.Parking.Lot)
	p.GET("/district", h.Parking.District)

	return r
}
