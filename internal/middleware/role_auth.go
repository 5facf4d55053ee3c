package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/models"
)

// RequireRole rejects callers whose role is not listed. Must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := GetIdentity(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Your role cannot perform this action")
		c.Abort()
	}
}

// RequireGuardian allows parents and the admin.
func RequireGuardian() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin, models.RoleParent)
}

// RequireAdmin allows only the family admin.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
