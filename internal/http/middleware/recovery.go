package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a 500 with the unknown-error body
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("request_id", c.Writer.Header().Get(RequestIDHeader)).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"reason":  domain.ReasonUnknown,
						"message": domain.ReasonUnknown.Message(),
					},
				})
			}
		}()
		c.Next()
	}
}
