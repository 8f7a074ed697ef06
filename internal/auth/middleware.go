package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxClaimsKey = "auth_claims"

// RequireAuth rejects requests without a valid bearer token. When repo is
// non-nil the token's version is checked against the stored one, so revoked
// tokens fail even before they expire.
func RequireAuth(tokens Tokens, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Verify(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if repo != nil {
			version, err := repo.TokenVersion(c.Request.Context(), claims.UserID)
			if err != nil || version != claims.TokenVersion {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
		}

		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the verified claims RequireAuth stored on the context,
// or nil when the request never passed the middleware.
func ClaimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
