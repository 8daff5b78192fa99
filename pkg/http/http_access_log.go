package http

import (
	"strings"
	"time"

	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// AccessLogFormat logs one line per request through the global logger.
func AccessLogFormat(cfg *Http) fiber.Handler {
	// exclude api path
	// tips: 这里的路径是不需要记录日志的路径，url为端口后的全部路径
	excludedPaths := []string{
		"/health",
		"/metrics",
	}

	if cfg != nil && !cfg.AccessLog {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, p := range excludedPaths {
			if path == p || strings.HasPrefix(path, p+"/") {
				return c.Next()
			}
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		query := string(c.Request().URI().QueryString())
		if query != "" {
			query = "?" + query
		}

		log.Infow("HTTP request",
			"request_id", c.Locals("request_id"),
			"method", c.Method(),
			"path", path,
			"query", query,
			"status", c.Response().StatusCode(),
			"ip", clientIP(c),
			"user_agent", c.Get("User-Agent"),
			"latency", latency.String(),
		)
		return err
	}
}

// clientIP prefers the address resolved by the real ip middleware.
func clientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals("ip").(string); ok && ip != "" {
		return ip
	}
	return c.IP()
}
