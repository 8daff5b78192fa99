package middleware

import (
	"github.com/go-arcade/qaboard/pkg/id"
	"github.com/gofiber/fiber/v2"
)

// RequestMiddleware set request id
func RequestMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestId := c.Get("X-Request-Id")
		if requestId == "" {
			requestId = id.GetUUID()
		}
		c.Request().Header.Set("X-Request-Id", requestId)
		c.Set("X-Request-Id", requestId)
		c.Locals("request_id", requestId)
		return c.Next()
	}
}
