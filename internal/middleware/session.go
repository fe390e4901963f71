package middleware

import (
	"errors"

	"rukami/internal/models"
	"rukami/internal/services"
	"rukami/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// SessionRequired is a Fiber middleware that resolves the session cookie
// into a user and stores it in the request locals.
func SessionRequired(authService *services.AuthService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		user, err := authService.ResolveSession(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid or expired session",
				})
			}
			logger.Logger.Error().Err(err).Str("path", c.Path()).Msg("Session lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by SessionRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}
