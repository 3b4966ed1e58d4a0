package middleware

import (
	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the session role against PermissionRoles.
// Unconfigured permission -> 500 "Permission configuration error"; role not
// allowed -> 403 "User is Forbidden from performing this action".
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := GetSession(c)
		if sess == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if roles, ok := constants.PermissionRoles[permission]; !ok || len(roles) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, sess.Role) {
			metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
			return response.Forbidden(c, "User is Forbidden from performing this action")
		}
		return c.Next()
	}
}
