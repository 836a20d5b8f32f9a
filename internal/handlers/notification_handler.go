package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linkup/internal/notify"
)

type NotificationHandler struct {
	Notifier *notify.LocalNotifier
}

// GET /notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"notifications": h.Notifier.List(),
		"unread":        h.Notifier.UnreadCount(),
	})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if !h.Notifier.MarkRead(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
	}
	return c.JSON(fiber.Map{"message": "read"})
}

// DELETE /notifications
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	h.Notifier.ClearAll()
	return c.SendStatus(fiber.StatusNoContent)
}
