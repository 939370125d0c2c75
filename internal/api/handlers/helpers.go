package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"autosocial/internal/models"
)

func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// renderError maps service failures onto a stable status/message pair.
// Ownership mismatches are rendered exactly like a missing record so
// existence is not leaked across owners; only validation messages are
// echoed back.
func renderError(c *fiber.Ctx, err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ve.Message,
		})
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrAccessDenied):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	case errors.Is(err, models.ErrUpstreamTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": "Upstream timeout",
		})
	case errors.Is(err, models.ErrCredentialExchange):
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Credential exchange failed",
		})
	default:
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
