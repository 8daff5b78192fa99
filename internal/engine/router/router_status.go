package router

import (
	"github.com/go-arcade/qaboard/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) statusRouter(r fiber.Router) {
	r.Get("/status", rt.status)                                         // 同步会话状态
	r.Post("/reconnect", rt.reconnect)                                  // 重新执行启动流程
	r.Post("/flush", rt.flush)                                          // 立即保存
	r.Get("/events", rt.events.Handler(topicStatus, rt.statusSnapshot)) // 状态变化推送 (SSE)
}

const topicStatus = "status"

func (rt *Router) statusSnapshot() any {
	return rt.Engine.Status()
}

func (rt *Router) status(c *fiber.Ctx) error {
	c.Locals(middleware.DETAIL, rt.Engine.Status())
	return nil
}

// reconnect 同步执行一次启动尝试，失败后的重试在后台进行
func (rt *Router) reconnect(c *fiber.Ctx) error {
	state := rt.Engine.Reconnect(c.UserContext())
	c.Locals(middleware.DETAIL, fiber.Map{"state": state})
	return nil
}

func (rt *Router) flush(c *fiber.Ctx) error {
	if err := rt.Engine.Flush(c.UserContext()); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, rt.Engine.Status())
	return nil
}
