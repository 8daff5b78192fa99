package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/8 15:38
 * @file: http.go
 * @description: http server
 */

type Http struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ContextPath     string `mapstructure:"contextPath"`
	ExposeMetrics   bool   `mapstructure:"exposeMetrics"`
	AccessLog       bool   `mapstructure:"accessLog"`
	CorsOrigins     string `mapstructure:"corsOrigins"` // 逗号分隔，默认 *
	BodyLimit       int    `mapstructure:"bodyLimit"`
	ReadTimeout     int    `mapstructure:"readTimeout"`
	WriteTimeout    int    `mapstructure:"writeTimeout"`
	IdleTimeout     int    `mapstructure:"idleTimeout"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
	TLS             TLS    `mapstructure:"tls"`
}

type TLS struct {
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// SetDefaults 填充未配置的字段
func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.CorsOrigins == "" {
		h.CorsOrigins = "*"
	}
	if h.ContextPath == "" {
		h.ContextPath = "/api/v1"
	}
	if h.BodyLimit <= 0 {
		// 视频附件上限 300MB，留出表单开销
		h.BodyLimit = 310 * 1024 * 1024
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = 60
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = 60
	}
	if h.IdleTimeout == 0 {
		h.IdleTimeout = 120
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = 10
	}
}

func (h *Http) Addr() string {
	return net.JoinHostPort(h.Host, fmt.Sprintf("%d", h.Port))
}

// NewHttp starts app in the background and returns its shutdown hook.
func NewHttp(cfg Http, app *fiber.App) func(ctx context.Context) error {
	cfg.SetDefaults()
	addr := cfg.Addr()

	go func() {
		log.Infow("http server start", "addr", addr)
		var err error
		if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
			err = app.ListenTLS(addr, cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = app.Listen(addr)
		}
		if err != nil && !errors.Is(err, net.ErrClosed) {
			log.Errorw("http server error", "addr", addr, "error", err)
		}
	}()

	return createShutdownHook(app, cfg.ShutdownTimeout)
}

func createShutdownHook(app *fiber.App, shutdownTimeout int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log.Info("http server shutting down...")
		timeout := time.Duration(shutdownTimeout) * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("http server shut down gracefully")
		return nil
	}
}
