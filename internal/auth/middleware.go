package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MemberAuth enforces bearer JWT tokens signed with HS256.
func MemberAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}

// AdminOnly allows only tokens carrying the admin role. Must run after
// MemberAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsAny, _ := c.Get("claims")
		claims, ok := claimsAny.(Claims)
		if !ok || claims.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin access required"})
			return
		}
		c.Next()
	}
}

// ClaimsFrom extracts the parsed claims set by MemberAuth.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	claimsAny, _ := c.Get("claims")
	claims, ok := claimsAny.(Claims)
	return claims, ok
}
