package handlers

import (
	"errors"
	"fmt"

	"resumebuilder/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// respondError writes err using the status mapping of the error taxonomy. authStatus is the
// status used for auth failures, which differs between token checks (401) and credential or
// OTP mismatches (400).
func respondError(c *fiber.Ctx, err error, authStatus int) error {
	appErr := apperrors.As(err)
	switch appErr.Kind {
	case apperrors.KindValidation, apperrors.KindConflict:
		body := fiber.Map{"message": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case apperrors.KindAuth:
		return c.Status(authStatus).JSON(fiber.Map{"message": appErr.Message})
	case apperrors.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": appErr.Message})
	case apperrors.KindTooManyRequests:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": appErr.Message})
	default:
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Interface("request_id", c.Locals("requestid")).
			Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
}

// validationFailed renders validator errors the same way for every request body.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	log.Debug().Err(err).Str("path", c.Path()).Msg("error parsing request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}
