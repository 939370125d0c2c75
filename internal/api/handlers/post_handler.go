package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"autosocial/internal/models"
	"autosocial/internal/queue"
	"autosocial/internal/service"
	"autosocial/internal/transfer"
)

type PostHandler struct {
	s      service.PostService
	client queue.Enqueuer
}

func NewPostHandler(service service.PostService, client queue.Enqueuer) *PostHandler {
	return &PostHandler{s: service, client: client}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		return renderError(c, err)
	}

	if post.Status == models.PostStatusScheduled && post.ScheduledFor != nil {
		payload := queue.PublishPostPayload{PostID: post.ID}
		if err := queue.EnqueuePost(h.client, payload, time.Until(*post.ScheduledFor)); err != nil {
			slog.Error("error scheduling publish task for post " + post.ID + ": " + err.Error())
		}
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	post, err := h.s.Get(c.Context(), userID, postID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	var pu transfer.PostUpdate
	if err := c.BodyParser(&pu); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Update(c.Context(), userID, postID, &pu)
	if err != nil {
		return renderError(c, err)
	}

	if post.Status == models.PostStatusScheduled && post.ScheduledFor != nil {
		payload := queue.PublishPostPayload{PostID: post.ID}
		if err := queue.EnqueuePost(h.client, payload, time.Until(*post.ScheduledFor)); err != nil {
			slog.Error("error scheduling publish task for post " + post.ID + ": " + err.Error())
		}
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	if err := h.s.Remove(c.Context(), userID, postID); err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}
