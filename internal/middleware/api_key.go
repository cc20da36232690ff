package middleware

import (
	"crypto/subtle"

	"geodir-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const apiKeyHeader = "X-API-Key"

// RequireAPIKey gates a route group behind a static key carried in X-API-Key.
// An empty configured key disables the check entirely.
func RequireAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		supplied := c.Get(apiKeyHeader)
		if supplied == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
