package middleware

import (
	"net/http"
	"strings"

	"zapshift-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// RequireSelfOrAdmin lets a request through when the email in path param
// matches the verified caller, or when the caller is an admin.
func RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) == users.RoleAdmin {
			c.Next()
			return
		}
		if !strings.EqualFold(c.Param(param), c.GetString(CtxEmail)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
			return
		}
		c.Next()
	}
}
