package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Authorize gates a route on the authenticated user's role.
func (m *AuthMiddleware) Authorize(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))

	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortUnauthorized(c, "Not authorized to access this route")
			return
		}

		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   fmt.Sprintf("User role %s is not authorized to access this route", role),
			})
			return
		}
		c.Next()
	}
}
