package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/infrastructure/auth"
	"github.com/rs/zerolog"
)

// CasbinMW authorizes each request against the policy service using the role set by Session
type CasbinMW struct {
	policy domain.PolicyService
	log    zerolog.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policy domain.PolicyService, logger zerolog.Logger) *CasbinMW {
	return &CasbinMW{policy: policy, log: logger}
}

// Enforce returns the casbin authorization middleware
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		if role == "" {
			role = auth.RoleAnonymous
		}

		allowed, err := mw.policy.CheckPermission(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			mw.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("authorization check failed")
			abort(c, http.StatusInternalServerError, "authorization_failed", "Authorization check failed")
			return
		}

		if !allowed {
			if role == auth.RoleAnonymous {
				abort(c, http.StatusUnauthorized, "unauthenticated", "Please sign in to continue.")
			} else {
				abort(c, http.StatusForbidden, "forbidden", "Access denied")
			}
			return
		}

		c.Next()
	}
}

func abort(c *gin.Context, status int, reason, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"reason": reason, "message": message}})
}
