package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKey requires the apikey header to carry the anonymous or the service
// key. It is a no-op when no anonymous key is configured.
func APIKey(anonKey, serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if anonKey == "" {
			c.Next()
			return
		}
		key := c.GetHeader("apikey")
		if !equalKey(key, anonKey) && !equalKey(key, serviceKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ServiceKeyRequired guards privileged routes with the X-Service-Key header.
// With no service key configured every request is refused.
func ServiceKeyRequired(serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !equalKey(c.GetHeader("X-Service-Key"), serviceKey) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Service key required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func equalKey(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
