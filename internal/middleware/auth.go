package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/column-task-api/internal/constants"
	apierrors "github.com/yukikurage/column-task-api/internal/errors"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		username, ok := session.Get(constants.ContextKeyUsername).(string)

		if !ok || username == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store username in context for easy access in handlers
		c.Set(constants.ContextKeyUsername, username)
		c.Next()
	}
}

// GetUsername retrieves the current username from context
func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(constants.ContextKeyUsername)
	if !exists {
		return "", false
	}

	v, ok := username.(string)
	return v, ok && v != ""
}
