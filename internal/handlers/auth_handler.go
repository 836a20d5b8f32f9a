package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linkup/dto"
	"linkup/internal/authctx"
	"linkup/internal/repository"
	"linkup/services"
)

type AuthHandler struct {
	Auth  *services.AuthService
	Users *repository.UserRepository
}

// POST /auth/signup
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var body dto.SignUpRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ident, err := h.Auth.SignUp(c.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		return respondError(c, err)
	}
	token, err := h.Auth.IssueToken(ident)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{Token: token, User: ident})
}

// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body dto.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ident, err := h.Auth.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return respondError(c, err)
	}
	token, err := h.Auth.IssueToken(ident)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AuthResponse{Token: token, User: ident})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.Auth.Logout()
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var body dto.ForgotPasswordRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.Auth.RequestPasswordReset(c.Context(), body.Email); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "password reset requested"})
}

// GET /me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	u, err := h.Users.Get(c.Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(u)
}

// PATCH /me
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body dto.UpdateProfileRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	u, err := h.Users.Get(c.Context(), uid)
	if err != nil {
		return respondError(c, err)
	}

	upd := services.ProfileUpdate{Name: body.Name, Bio: body.Bio}
	if body.Avatar != nil {
		upd.Avatar = &services.Media{Source: body.Avatar.Source, Data: body.Avatar.Data}
	}

	ident, err := h.Auth.UpdateProfileFor(c.Context(), u.Identity(), upd)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ident)
}
