package store

import (
	"fmt"

	"github.com/go-arcade/qaboard/pkg/cache"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Conf 本地存储配置
type Conf struct {
	Backend  string `mapstructure:"backend"`  // file | memory | redis
	Path     string `mapstructure:"path"`     // file 后端的快照目录
	MaxBytes int    `mapstructure:"maxBytes"` // fastcache 容量
}

func (c *Conf) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.Path == "" {
		c.Path = "./data/local"
	}
}

// NewKV 按配置创建本地 KV 后端
func NewKV(conf Conf, redisConf cache.Redis) (cache.KV, error) {
	conf.SetDefaults()
	switch conf.Backend {
	case BackendFile:
		return cache.NewFastCache(cache.FastCacheConfig{MaxBytes: conf.MaxBytes, Path: conf.Path})
	case BackendMemory:
		return cache.NewFastCache(cache.FastCacheConfig{MaxBytes: conf.MaxBytes})
	case BackendRedis:
		client, err := cache.NewRedis(redisConf)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisKV(client, redisConf.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown local store backend %q", conf.Backend)
	}
}
