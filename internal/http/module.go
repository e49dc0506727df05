package http

import (
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups modules mount on.
type RouterContext struct {
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind the access token.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin, limited to elevated roles.
	Admin *gin.RouterGroup
}

// RequireElevated restricts a group to admins and sub-admins.
func RequireElevated() gin.HandlerFunc {
	return httpkit.RequireRole(string(domain.RoleAdmin), string(domain.RoleSubAdmin))
}
