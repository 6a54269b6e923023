package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/pkg/response"
)

// SelfOrAdmin lets through the owner of the :param id or an admin. It must
// run after Auth.
func SelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserRole) == string(entity.RoleAdmin) || c.GetString(CtxUserID) == c.Param(param) {
			c.Next()
			return
		}
		response.Error[any](c, http.StatusForbidden, "Not allowed to access this user", nil)
	}
}

// AdminOnly rejects every caller whose token role is not admin.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserRole) != string(entity.RoleAdmin) {
			response.Error[any](c, http.StatusForbidden, "Admin access required", nil)
			return
		}
		c.Next()
	}
}

// When returns mws if enabled, otherwise nothing. Route tables use it to
// make enforcement a configuration switch.
func When(enabled bool, mws ...gin.HandlerFunc) []gin.HandlerFunc {
	if !enabled {
		return nil
	}
	return mws
}
