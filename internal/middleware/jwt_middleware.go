package middleware

import (
	"strings"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const userLocalsKey = "user"

// AuthRequired is a Fiber middleware that resolves the bearer token to the current user.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token, authorization denied",
			})
		}

		// Expected format: "Bearer <token>"
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.Authenticate(c.UserContext(), strings.TrimSpace(tokenString))
		if err != nil {
			if apperrors.KindOf(err) != apperrors.KindAuth {
				log.Error().Err(err).Msg("token authentication failed")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Server error",
				})
			}
			log.Debug().Err(err).Msg("rejected token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Token is not valid",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired, or nil outside protected routes.
func CurrentUser(c *fiber.Ctx) *models.UserView {
	user, _ := c.Locals(userLocalsKey).(*models.UserView)
	return user
}
