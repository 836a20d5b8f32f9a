package authctx

import "github.com/gofiber/fiber/v2"

// UserIDFrom returns the authenticated user id set by the JWT middleware.
func UserIDFrom(c *fiber.Ctx) (string, bool) {
	if v := c.Locals("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
