package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
)

// ProviderSet 提供路由相关的依赖
var ProviderSet = wire.NewSet(NewRouter, ProvideApp)

// ProvideApp 构建 fiber 应用
func ProvideApp(rt *Router) *fiber.App {
	return rt.Router()
}
