package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linkup/pkg/apperr"
)

// respondError maps the error taxonomy onto HTTP statuses. Every operation
// either completes or surfaces an error; nothing partial.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidArgument:
		status = fiber.StatusBadRequest
	case apperr.CodeUnauthenticated:
		status = fiber.StatusUnauthorized
	case apperr.CodePermissionDenied:
		status = fiber.StatusForbidden
	case apperr.CodeNotFound:
		status = fiber.StatusNotFound
	case apperr.CodeAlreadyExists:
		status = fiber.StatusConflict
	case apperr.CodeUnavailable:
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
