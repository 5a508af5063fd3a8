package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// RequireAdmin ensures the actor has administrator privileges.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok || !actor.IsAdmin() {
			return apperrors.NewForbidden("administrator role required")
		}
		return c.Next()
	}
}

// RequireTechnician ensures the actor may work incidents (technician or
// admin).
func RequireTechnician() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok || !actor.IsTechnician() {
			return apperrors.NewForbidden("technician role required")
		}
		return c.Next()
	}
}
