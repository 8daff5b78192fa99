package middleware

import (
	httpx "github.com/go-arcade/qaboard/pkg/http"
	"github.com/gofiber/fiber/v2"
)

// UnifiedResponse 统一响应
const (
	// DETAIL 用于设置响应数据，例如查询等需要返回数据的接口
	// e.g: c.Locals(DETAIL, value)
	DETAIL = "detail"

	// OPERATION 用于新增，修改，删除等不需要返回数据的接口，只返回操作结果
	// e.g: c.Locals(OPERATION, "delete team")
	OPERATION = "operation"
)

// UnifiedResponseMiddleware wraps handler results in {code, detail, msg}.
// Handlers that already wrote an error body are left untouched.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			return err
		}

		// 如果未设置响应状态码，默认将状态码设置为200（OK）
		if c.Response().StatusCode() == 0 {
			c.Status(fiber.StatusOK)
		}

		// 业务逻辑正确, 设置响应数据
		if c.Response().StatusCode() >= fiber.StatusOK && c.Response().StatusCode() < fiber.StatusMultipleChoices {
			if detail := c.Locals(DETAIL); detail != nil {
				return httpx.WithRepJSON(c, detail)
			}

			// 业务逻辑正确, 无响应数据, 只返回结果
			if c.Locals(OPERATION) != nil {
				return httpx.WithRepNotDetail(c)
			}
		}

		return nil
	}
}
