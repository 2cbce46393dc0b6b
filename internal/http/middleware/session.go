package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/services"
)

// Context keys set by Session
const (
	UserKey = "user"
	RoleKey = "role"
)

// CurrentUserReader exposes the device's signed-in user
type CurrentUserReader interface {
	CurrentUser() (*domain.User, bool)
}

// Session stores the signed-in user, if any, and the caller's role in the context
func Session(sessions CurrentUserReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := sessions.CurrentUser()
		if ok {
			c.Set(UserKey, user)
		}
		c.Set(RoleKey, services.RoleFor(ok))
		c.Next()
	}
}

// CurrentUser returns the user stored by Session
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
