package syncer

import "github.com/google/wire"

// ProviderSet 同步引擎
var ProviderSet = wire.NewSet(NewEngine)
