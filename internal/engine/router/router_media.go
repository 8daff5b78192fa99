package router

import (
	"mime"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (rt *Router) mediaRouter(r fiber.Router) {
	r.Get("/media/*", rt.getMedia)
}

// getMedia 从对象存储读取附件，未配置公开地址时使用
func (rt *Router) getMedia(c *fiber.Ctx) error {
	key := c.Params("*")
	if key == "" || strings.Contains(key, "..") {
		return badRequest(c, "invalid media key")
	}
	data, err := rt.Media.Get(c.UserContext(), key)
	if err != nil {
		return fail(c, err)
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		c.Set(fiber.HeaderContentType, ct)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
