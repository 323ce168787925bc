package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthConfig holds configuration for Bearer token authentication.
type AuthConfig struct {
	// Enabled controls whether authentication is enforced.
	Enabled bool `json:"enabled"`

	// Token is the expected Bearer token value.
	// Can also be set via the GITSEER_GATEWAY_TOKEN environment variable.
	Token string `json:"token"`
}

// ResolveToken returns the effective token, checking env vars as fallback.
func (c *AuthConfig) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv("GITSEER_GATEWAY_TOKEN")
}

// BearerAuth returns a Gin middleware that enforces Bearer token
// authentication. Token comparison is constant-time; loopback requests and
// the health endpoint bypass the check.
func BearerAuth(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		token := cfg.ResolveToken()
		if token == "" {
			c.Next()
			return
		}

		// Whitelist paths that don't require auth.
		path := c.Request.URL.Path
		if path == "/healthz" || path == "/version" {
			c.Next()
			return
		}

		if isLocalRequest(c.Request) {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing Authorization header")
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			abortUnauthorized(c, "invalid Authorization header format, expected 'Bearer <token>'")
			return
		}

		provided := authHeader[len(prefix):]
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			abortUnauthorized(c, "invalid bearer token")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"message": message,
			"type":    "authentication_error",
		},
	})
}

// isLocalRequest checks if a request originates from a loopback address.
func isLocalRequest(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}
