package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

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
)

// EnvPrefix 环境变量前缀，例如 QABOARD_HTTP_PORT 覆盖 http.port
const EnvPrefix = "QABOARD"

type AppConfig struct {
	Log      log.Conf              `mapstructure:"log"`
	Http     http.Http             `mapstructure:"http"`
	Database database.Database     `mapstructure:"database"`
	Redis    cache.Redis           `mapstructure:"redis"`
	Local    store.Conf            `mapstructure:"local"`
	Sync     syncer.Conf           `mapstructure:"sync"`
	Remote   repo.Conf             `mapstructure:"remote"`
	History  history.Conf          `mapstructure:"history"`
	Storage  storage.Storage       `mapstructure:"storage"`
	Metrics  metrics.MetricsConfig `mapstructure:"metrics"`
	Pprof    pprof.PprofConfig     `mapstructure:"pprof"`
}

// SetDefaults fills every section left unset.
func (c *AppConfig) SetDefaults() {
	if c.Log.Output == "" {
		c.Log = *log.SetDefaults()
	}
	c.Http.SetDefaults()
	c.Database.SetDefaults()
	c.Local.SetDefaults()
	c.Sync.SetDefaults()
	c.Remote.SetDefaults()
	c.History.SetDefaults()
	c.Storage.SetDefaults()
	c.Metrics.SetDefaults()
	c.Pprof.SetDefaults()
}

var (
	mu   sync.RWMutex
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return Current()
}

// Current returns the last loaded configuration.
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile load config file. An empty path reads conf.d/config.toml.
func LoadConfigFile(confDir string) (AppConfig, error) {
	config := newViper(confDir)
	if err := config.ReadInConfig(); err != nil {
		return AppConfig{}, fmt.Errorf("failed to read configuration file: %v", err)
	}

	var loaded AppConfig
	if err := config.Unmarshal(&loaded); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	loaded.SetDefaults()

	// 配置动态改变时重新解析，已创建的组件不受影响
	config.OnConfigChange(func(e fsnotify.Event) {
		var next AppConfig
		if err := config.Unmarshal(&next); err != nil {
			log.Warnw("failed to unmarshal changed configuration", "path", e.Name, "error", err)
			return
		}
		next.SetDefaults()
		mu.Lock()
		cfg = next
		mu.Unlock()
		log.Infow("configuration reloaded", "path", e.Name)
	})
	config.WatchConfig()

	log.Infow("config file loaded",
		"path", config.ConfigFileUsed(),
	)
	return loaded, nil
}

func newViper(confDir string) *viper.Viper {
	config := viper.New()
	if confDir != "" {
		config.SetConfigFile(confDir) //文件名
	} else {
		config.AddConfigPath("./conf.d")
		config.SetConfigName("config")
		config.SetConfigType("toml")
	}
	config.SetEnvPrefix(EnvPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	return config
}
