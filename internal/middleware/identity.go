package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the caller identity.
const UserIDKey = "user_id"

// UserIDHeader carries the caller identity on every request.
const UserIDHeader = "X-User-ID"

// Identity extracts the caller identity from the request header and
// rejects requests without one. Task ownership checks depend on this
// value being present downstream.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + UserIDHeader + " header",
			})
			c.Abort()
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the caller identity set by Identity.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
