//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/qaboard/internal/engine/bootstrap"
	"github.com/go-arcade/qaboard/internal/engine/config"
	"github.com/go-arcade/qaboard/internal/engine/repo"
	"github.com/go-arcade/qaboard/internal/engine/router"
	"github.com/go-arcade/qaboard/internal/engine/service"
	"github.com/go-arcade/qaboard/internal/engine/store"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/database"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/metrics"
	"github.com/go-arcade/qaboard/pkg/pprof"
	"github.com/go-arcade/qaboard/pkg/storage"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 基础设施
		log.ProviderSet,
		database.ProviderSet,
		metrics.ProviderSet,
		pprof.ProviderSet,
		storage.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		store.ProviderSet,
		// 同步引擎与服务
		syncer.ProviderSet,
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
