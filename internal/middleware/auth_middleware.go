package middleware

import (
	"net/http"
	"strings"

	"github.com/dftlabs-home/oyoagro-api/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserKey   = "currentUser"
	ContextClaimsKey = "tokenClaims"
)

// AuthMiddleware enforces bearer authentication. Beyond the JWT checks it
// requires the presented token to match the account's stored active token
// exactly, so logout and any newer login invalidate older tokens.
func AuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Bearer token is required",
			})
			return
		}

		claims, user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware extracts the account when a valid token is present
// and stays silent otherwise. The revocation rule is the same as in
// AuthMiddleware; a stale token yields an anonymous request, not an error.
func OptionalAuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, user, err := auth.VerifyToken(tokenStr); err == nil {
				c.Set(ContextUserKey, user)
				c.Set(ContextClaimsKey, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return token, token != ""
}
