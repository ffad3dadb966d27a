package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/auth"
)

// RequireScreen gates a route group with the roles allowed to open a dashboard screen.
// Must run after AuthMiddleware.
func RequireScreen(screen string) fiber.Handler {
	return RequireRole(auth.RolesFor(screen)...)
}
