// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/go-arcade/qaboard/internal/engine/history"
	"github.com/go-arcade/qaboard/internal/engine/repo"
	"github.com/go-arcade/qaboard/internal/engine/store"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/cache"
	"github.com/go-arcade/qaboard/pkg/database"
	"github.com/go-arcade/qaboard/pkg/http"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/metrics"
	"github.com/go-arcade/qaboard/pkg/pprof"
	"github.com/go-arcade/qaboard/pkg/storage"
	"github.com/google/wire"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideLocalConfig,
	ProvideSyncConfig,
	ProvideRemoteConfig,
	ProvideHistoryOptions,
	ProvideStorageConfig,
	ProvideMetricsConfig,
	ProvidePprofConfig,
)

// ProvideConf 提供应用配置
func ProvideConf(configPath string) *AppConfig {
	c := NewConf(configPath)
	return &c
}

// ProvideHttpConfig 提供 HTTP 配置
func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	httpConfig := &appConf.Http
	httpConfig.SetDefaults()
	return httpConfig
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

// ProvideDatabaseConfig 提供数据库配置
func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

// ProvideRedisConfig 提供 Redis 配置
func ProvideRedisConfig(appConf *AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideLocalConfig(appConf *AppConfig) store.Conf {
	return appConf.Local
}

func ProvideSyncConfig(appConf *AppConfig) syncer.Conf {
	return appConf.Sync
}

func ProvideRemoteConfig(appConf *AppConfig) repo.Conf {
	return appConf.Remote
}

// ProvideHistoryOptions 解析历史查询使用的时区
func ProvideHistoryOptions(appConf *AppConfig) (history.Options, error) {
	return appConf.History.Options()
}

func ProvideStorageConfig(appConf *AppConfig) storage.Storage {
	return appConf.Storage
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	metricsConfig := appConf.Metrics
	metricsConfig.SetDefaults()
	return metricsConfig
}

// ProvidePprofConfig 提供 Pprof 配置
func ProvidePprofConfig(appConf *AppConfig) pprof.PprofConfig {
	return appConf.Pprof
}
