package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/utils"
)

// RequireRole ensures that the authenticated user holds one of the allowed
// roles. Admins pass every role check.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if user.Role == models.RoleAdmin {
			return c.Next()
		}
		if _, ok := allowed[user.Role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
