package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/config"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/http"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/metrics"
	"github.com/go-arcade/qaboard/pkg/pprof"
	"github.com/gofiber/fiber/v2"
)

type App struct {
	HttpApp  *fiber.App
	HttpConf *http.Http
	Engine   *syncer.Engine
	Metrics  *metrics.Server
	Pprof    *pprof.Server
	Logger   *log.Logger
	AppConf  *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	httpApp *fiber.App,
	httpConf *http.Http,
	engine *syncer.Engine,
	metricsServer *metrics.Server,
	pprofServer *pprof.Server,
	logger *log.Logger,
	appConf *config.AppConfig,
) *App {
	return &App{
		HttpApp:  httpApp,
		HttpConf: httpConf,
		Engine:   engine,
		Metrics:  metricsServer,
		Pprof:    pprofServer,
		Logger:   logger,
		AppConf:  appConf,
	}
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	return initApp(configFile)
}

// Run starts the sync session and the servers, waits for an exit signal and
// shuts down in reverse order. Pending edits are flushed before the stores
// are closed.
func Run(app *App, cleanup func()) {
	logger := app.Logger.Log

	// 首次启动尝试是同步的，失败后在后台重试，不阻塞服务启动
	startCtx, startCancel := context.WithTimeout(context.Background(), app.AppConf.Sync.OpTimeout)
	state := app.Engine.Start(startCtx)
	startCancel()
	logger.Infow("sync session started", "state", state)

	if err := app.Metrics.Start(); err != nil {
		logger.Errorw("metrics server failed to start", "error", err)
	}
	if err := app.Pprof.Start(); err != nil {
		logger.Errorw("pprof server failed to start", "error", err)
	}

	shutdownHttp := http.NewHttp(*app.HttpConf, app.HttpApp)

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-quit
	logger.Infof("Received signal: %v, shutting down gracefully...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// close components in order
	if err := shutdownHttp(shutdownCtx); err != nil {
		logger.Errorw("HTTP server shutdown error", "error", err)
	}
	if err := app.Engine.Close(shutdownCtx); err != nil {
		logger.Warnw("final save did not reach the remote store, kept locally", "error", err)
	}
	if err := app.Metrics.Stop(shutdownCtx); err != nil {
		logger.Warnw("metrics server shutdown error", "error", err)
	}
	if err := app.Pprof.Stop(shutdownCtx); err != nil {
		logger.Warnw("pprof server shutdown error", "error", err)
	}

	cleanup()
	logger.Info("Server shutdown complete")
	_ = log.Sync()
}
