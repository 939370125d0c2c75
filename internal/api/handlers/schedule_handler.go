package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"autosocial/internal/service"
	"autosocial/internal/transfer"
)

type ScheduleHandler struct {
	s service.ScheduleService
}

func NewScheduleHandler(service service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{s: service}
}

func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var sc transfer.ScheduleCreation
	if err := c.BodyParser(&sc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	schedule, err := h.s.Create(c.Context(), userID, &sc)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (h *ScheduleHandler) GetSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleID := c.Params("id")

	schedule, err := h.s.Get(c.Context(), userID, scheduleID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(schedule)
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	userID := GetUserID(c)

	schedules, err := h.s.List(c.Context(), userID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(schedules)
}

func (h *ScheduleHandler) UpdateSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleID := c.Params("id")

	var su transfer.ScheduleUpdate
	if err := c.BodyParser(&su); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	schedule, err := h.s.Update(c.Context(), userID, scheduleID, &su)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(schedule)
}

func (h *ScheduleHandler) RemoveSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleID := c.Params("id")

	if err := h.s.Remove(c.Context(), userID, scheduleID); err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Schedule deleted successfully",
	})
}
