package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "recipebox/internal/pkg/jwt"
	"recipebox/internal/pkg/permission"
)

const (
	ctxUserID  = "user_id"
	ctxIsAdmin = "is_admin"
)

// Authenticate parses a Bearer token when one is present and stores the
// claims on the context. Anonymous requests pass through; route-level
// permission checks decide what they may do.
func Authenticate(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			c.Next()
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid token",
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxIsAdmin, claims.IsAdmin)

		c.Next()
	}
}

// RequireAuth rejects anonymous requests. Must run after Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		c.Next()
	}
}

// Viewer builds the permission viewer for the current request. The zero
// viewer means anonymous.
func Viewer(c *gin.Context) permission.Viewer {
	id, exists := c.Get(ctxUserID)
	if !exists {
		return permission.Viewer{}
	}
	return permission.Viewer{
		ID:         id.(int64),
		Privileged: c.GetBool(ctxIsAdmin),
	}
}
