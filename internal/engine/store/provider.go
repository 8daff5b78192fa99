package store

import (
	"github.com/go-arcade/qaboard/pkg/cache"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideKV, NewLocalStore)

// ProvideKV opens the configured backend and closes it on cleanup.
func ProvideKV(conf Conf, redisConf cache.Redis, _ *log.Logger) (cache.KV, func(), error) {
	kv, err := NewKV(conf, redisConf)
	if err != nil {
		return nil, nil, err
	}
	return kv, func() {
		if err := kv.Close(); err != nil {
			log.Warnw("failed to close local store", "error", err)
		}
	}, nil
}
