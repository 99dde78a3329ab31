package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Role-Based Middleware ---
//
// These are meant to be used *after* AuthMiddleware, which attaches the
// authenticated user's role to the context.
//

// RequireSeller allows sellers and admins through.
func RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRoleKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if role != models.RoleSeller && role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Seller role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows admins only.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRoleKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
