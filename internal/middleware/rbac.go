package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/models"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
	"github.com/noah-isme/dance-class-api/pkg/response"
)

// RequireRoles enforces that the session user holds one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		session := CurrentSession(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[session.User.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(session.User.Role)+" may not perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireChoreographer admits roles that can own classes.
func RequireChoreographer() gin.HandlerFunc {
	return RequireRoles(models.RoleChoreographer, models.RoleBoth)
}
