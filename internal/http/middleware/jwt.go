package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/auth"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

const currentIdentityKey = "currentIdentity"

// IdentityResolver loads the identity behind verified token claims.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims auth.Claims) (model.Identity, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// checks "Authorization: Bearer <token>", verifies it, loads the identity
// and sets "currentIdentity" in context.
func JWTMiddleware(secret string, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth header"})
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid auth header"})
			return
		}

		claims, err := auth.ParseToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			log.Warn().Err(err).Str("sub", claims.Subject).Msg("[auth] token subject could not be resolved")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
			return
		}
		c.Set(currentIdentityKey, &identity)
		c.Next()
	}
}

// RequireRole rejects identities of any other role. It must run after
// JWTMiddleware.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetCurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if identity.Role() != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
