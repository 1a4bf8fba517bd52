package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/ecutune/ecutune/internal/pkg/auth"
)

const (
	// IdentityContextKey is a gin context key for the caller's identity.
	IdentityContextKey = "identity"
	identityCookieName = "ecutune_token"
	// IdentityHeader carries the caller's email in open mode.
	IdentityHeader = "X-Customer-Email"
)

// IdentityRequired resolves the caller's identity before the handler runs.
//
// With a token strategy the identity comes from a bearer token or cookie
// issued at order submission. A nil strategy enables open mode: the caller's
// submitted email is trusted as-is.
func IdentityRequired(strategy pkgAuth.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strategy == nil {
			identity := openModeIdentity(c)
			if identity == "" {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Set(IdentityContextKey, identity)
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		identity, err := strategy.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

func openModeIdentity(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(IdentityHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(c.PostForm("email"))
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(identityCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetIdentityCookie writes the issued token to the response.
func SetIdentityCookie(c *gin.Context, token string) {
	c.SetCookie(identityCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
