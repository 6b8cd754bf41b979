package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/pkg/response"
)

// AdminOnly rejects requests whose token does not carry the admin role.
// It must run after Authenticate.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, role := range GetRoles(c) {
			if role == model.RoleAdmin {
				return c.Next()
			}
		}
		return response.Forbidden(c, "Admin access required")
	}
}
