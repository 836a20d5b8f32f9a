package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linkup/dto"
	"linkup/internal/authctx"
	"linkup/services"
)

type ChatHandler struct {
	Chat *services.ChatService
}

// POST /chats/:userId/messages
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body dto.SendMessageRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	chatID, err := h.Chat.Send(c.Context(), uid, c.Params("userId"), body.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SendMessageResponse{ChatID: chatID})
}

// GET /chats/:userId/messages
func (h *ChatHandler) History(c *fiber.Ctx) error {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	msgs, err := h.Chat.History(c.Context(), uid, c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// GET /chats
func (h *ChatHandler) Conversations(c *fiber.Ctx) error {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	convs, err := h.Chat.Conversations(c.Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversations": convs})
}
