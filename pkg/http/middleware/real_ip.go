package middleware

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IP Locals 中保存客户端地址的键
const IP = "ip"

// RealIPMiddleware resolves the client address from X-Forwarded-For, then
// X-Real-IP, then the socket, and stores it under Locals(IP).
func RealIPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(IP, realIP(c))
		return c.Next()
	}
}

func realIP(c *fiber.Ctx) string {
	// XFF: client, proxy1, proxy2
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return c.IP()
}
