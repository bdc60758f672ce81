package middlewares

import (
	"net/http"

	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Role gates run after RequireAuth has resolved the identity; a missing
// identity here is a wiring bug surfaced as 401 rather than a panic.

// RequireAdmin allows only the admin role.
func RequireAdmin() gin.HandlerFunc {
	return requireRole(user.User.IsAdmin, "Admin role required")
}

// RequireEditor allows the admin and editor roles.
func RequireEditor() gin.HandlerFunc {
	return requireRole(user.User.IsAdminOrEditor, "Editor role required")
}

func requireRole(allowed func(user.User) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)

		if !ok {
			abortUnauthorized(c, "no_token", "Missing identity context")
			return
		}

		if !allowed(identity) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": message,
				},
			})
			return
		}

		c.Next()
	}
}
