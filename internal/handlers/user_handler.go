package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linkup/internal/authctx"
	"linkup/services"
)

type UserHandler struct {
	Users *services.UserService
}

// GET /users/search?q=term
func (h *UserHandler) Search(c *fiber.Ctx) error {
	users, err := h.Users.Search(c.Context(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GET /users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	u, err := h.Users.Profile(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(u)
}

// GET /users/:id/followers
func (h *UserHandler) Followers(c *fiber.Ctx) error {
	users, err := h.Users.Followers(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GET /users/:id/following
func (h *UserHandler) Following(c *fiber.Ctx) error {
	users, err := h.Users.Following(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// POST /users/:id/follow
func (h *UserHandler) Follow(c *fiber.Ctx) error {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if err := h.Users.Follow(c.Context(), uid, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "following"})
}

// DELETE /users/:id/follow
func (h *UserHandler) Unfollow(c *fiber.Ctx) error {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if err := h.Users.Unfollow(c.Context(), uid, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "unfollowed"})
}
