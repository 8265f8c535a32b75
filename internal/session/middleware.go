package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireSession gates a route group behind the admin session. The
// token travels in the Token header.
func RequireSession(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Validate(c.GetHeader("Token")); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Next()
	}
}
