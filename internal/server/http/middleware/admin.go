package middleware

import (
	"crypto/hmac"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminSecretHeader carries the shared administrative secret.
const AdminSecretHeader = "X-Admin-Secret"

// AdminRequired rejects requests that do not present the shared secret.
// The comparison is constant time.
func AdminRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(AdminSecretHeader)
		if secret == "" || !hmac.Equal([]byte(presented), []byte(secret)) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
