package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/routeslope/internal/pkg/logging"
)

// RequestIDLogMiddleware copies the Fiber request ID into the user context
// together with a request-scoped *slog.Logger, so the slope service and
// provider clients log with the same request_id.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ridStr, ok := c.Locals("requestid").(string)
		if !ok || ridStr == "" {
			return c.Next()
		}

		c.SetUserContext(logging.WithRequestID(c.UserContext(), ridStr))
		return c.Next()
	}
}
