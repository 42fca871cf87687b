package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lingoletics/core/internal/pkg/jwt"
	"github.com/lingoletics/core/internal/pkg/response"
)

// AdminAuth enforces a valid admin session token on every request it guards.
// Each admin endpoint revalidates the credential independently; nothing the
// client holds is trusted on its own.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := jwt.Parse(extractToken(c)); err != nil {
			response.Unauthorized(c, "Invalid or expired session")
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
