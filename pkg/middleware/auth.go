package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/internal/tokens"
)

// ClaimsKey is the gin context key holding the verified *tokens.Claims.
const ClaimsKey = "claims"

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(token string) (*tokens.Claims, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "No token provided")
			return
		}
		// Expect 'Bearer <token>'
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abort(c, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		claims, err := ver.Verify(token)
		if err != nil {
			msg := "Invalid token"
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			abort(c, http.StatusUnauthorized, msg)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// abort writes the common error body used across the API.
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
