package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"autosocial/internal/repository"
)

type HistoryHandler struct {
	ph repository.PublishHistoryRepository
}

func NewHistoryHandler(ph repository.PublishHistoryRepository) *HistoryHandler {
	return &HistoryHandler{ph: ph}
}

func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)

	records, err := h.ph.ListByUserID(c.Context(), userID)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch publish history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(records)
}
