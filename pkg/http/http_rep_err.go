package http

import (
	"github.com/gofiber/fiber/v2"
)

// ResponseErr 失败响应，与 Response 保持相同的 code/msg 字段
type ResponseErr struct {
	Code   int    `json:"code"`
	Detail any    `json:"detail,omitempty"`
	Msg    string `json:"msg"`
	Path   string `json:"path,omitempty"`
}

func (e ResponseErr) Error() string {
	return e.Msg
}

// WithRepErrMsg 返回失败结果并设置 HTTP 状态码
func WithRepErrMsg(c *fiber.Ctx, status, code int, errMsg string, path string) error {
	return c.Status(status).JSON(ResponseErr{
		Code: code,
		Msg:  errMsg,
		Path: path,
	})
}
