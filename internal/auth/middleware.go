package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the authenticated email.
const IdentityKey = "identity"

// SessionChecker resolves an opaque session token to the owner's email.
type SessionChecker interface {
	Check(ctx context.Context, token string) (string, error)
}

// Require enforces a bearer session token resolved through the checker.
func Require(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		email, err := checker.Check(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Set(IdentityKey, email)
		c.Next()
	}
}

type anyChecker []SessionChecker

func (cs anyChecker) Check(ctx context.Context, token string) (string, error) {
	var lastErr error
	for _, c := range cs {
		email, err := c.Check(ctx, token)
		if err == nil {
			return email, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// AnyOf accepts a token that any of the given checkers accepts.
func AnyOf(checkers ...SessionChecker) SessionChecker {
	return anyChecker(checkers)
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("bearer "):])
}

// Identity returns the authenticated email set by Require.
func Identity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}
