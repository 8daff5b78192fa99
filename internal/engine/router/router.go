package router

import (
	"errors"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/qaboard/internal/engine/history"
	"github.com/go-arcade/qaboard/internal/engine/service"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/internal/pkg/sse"
	"github.com/go-arcade/qaboard/pkg/http"
	"github.com/go-arcade/qaboard/pkg/http/middleware"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/metrics"
	"github.com/go-arcade/qaboard/pkg/storage"
	"github.com/go-arcade/qaboard/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/14
 * @file: router.go
 * @description: setup router
 */

type Router struct {
	Http    *http.Http
	Engine  *syncer.Engine
	Board   *service.BoardService
	Media   storage.Provider
	History history.Options
	Metrics *metrics.Server

	events *sse.Hub
}

func NewRouter(
	httpConf *http.Http,
	engine *syncer.Engine,
	board *service.BoardService,
	media storage.Provider,
	historyOpts history.Options,
	metricsServer *metrics.Server,
) *Router {
	rt := &Router{
		Http:    httpConf,
		Engine:  engine,
		Board:   board,
		Media:   media,
		History: historyOpts,
		Metrics: metricsServer,
		events:  sse.NewHub(),
	}
	engine.OnChange(rt.events.Feed(topicStatus, rt.statusSnapshot))
	return rt
}

func (rt *Router) Router() *fiber.App {
	rt.Http.SetDefaults()

	app := fiber.New(fiber.Config{
		AppName:               "QA Board",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             rt.Http.BodyLimit,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	})
	app.Hooks().OnShutdown(func() error {
		rt.events.Close()
		return nil
	})

	// 中间件
	app.Use(
		fiberrecover.New(),
		middleware.RequestMiddleware(),
		middleware.RealIPMiddleware(),
		http.AccessLogFormat(rt.Http),
		middleware.CorsMiddleware(rt.Http.CorsOrigins),
		middleware.ExceptionMiddleware,
		middleware.UnifiedResponseMiddleware(),
	)

	// 健康检查
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// 版本信息
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(rt.Metrics.Handler()))
	}

	api := app.Group(rt.Http.ContextPath)
	{
		rt.statusRouter(api)
		rt.teamRouter(api)
		rt.featureRouter(api)
		rt.historyRouter(api)
		rt.mediaRouter(api)
	}

	// 找不到路径时的处理 - 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrMsg(c, fiber.StatusNotFound, http.NotFound.Code, "request path not found", c.Path())
	})

	return app
}

// fail maps a service error to a response.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrFeatureNotFound),
		errors.Is(err, service.ErrStepNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrMediaNotFound),
		errors.Is(err, service.ErrNotInTrash),
		errors.Is(err, errNoHistory):
		return http.WithRepErrMsg(c, fiber.StatusNotFound, http.NotFound.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrMediaTooLarge):
		return http.WithRepErrMsg(c, fiber.StatusRequestEntityTooLarge, http.PayloadTooLarge.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrEmptyDescription),
		errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidIndex),
		errors.Is(err, service.ErrInvalidImport),
		errors.Is(err, service.ErrInvalidMedia):
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.ValidationError.Code, err.Error(), c.Path())
	case errors.Is(err, storage.ErrStorageDisabled):
		return http.WithRepErrMsg(c, fiber.StatusServiceUnavailable, http.StorageDisabled.Code, http.StorageDisabled.Msg, c.Path())
	}
	log.Errorw("request failed", "path", c.Path(), "error", err)
	return http.WithRepErrMsg(c, fiber.StatusInternalServerError, http.Failed.Code, err.Error(), c.Path())
}

func badRequest(c *fiber.Ctx, msg string) error {
	return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed.Code, msg, c.Path())
}

// paramId 解析路径中的 int64 id
func paramId(c *fiber.Ctx, key string) (int64, error) {
	v := c.Params(key)
	if v == "" {
		return 0, errors.New(key + " is empty")
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

// paramIds 依次解析多个路径参数
func paramIds(c *fiber.Ctx, keys ...string) ([]int64, error) {
	out := make([]int64, len(keys))
	for i, k := range keys {
		n, err := paramId(c, k)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
