package service

import (
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/storage"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(ProvideBoardService)

// ProvideBoardService 以同步引擎作为数据源
func ProvideBoardService(engine *syncer.Engine, media storage.Provider, mediaCfg storage.Storage) *BoardService {
	return NewBoardService(engine, media, mediaCfg)
}
