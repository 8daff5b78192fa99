package repo

import (
	"context"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/database"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/google/wire"
)

// ProviderSet 提供远端存储依赖
var ProviderSet = wire.NewSet(ProvideRemote)

// RemoteStore 远端存储契约，同步引擎只依赖这个接口
type RemoteStore interface {
	Ping(ctx context.Context) error
	LoadTeams(ctx context.Context) ([]model.Team, error)
	UpsertTeams(ctx context.Context, teams []model.Team, now time.Time) error
	PruneTeams(ctx context.Context, keep []int64) error
	LoadVerifications(ctx context.Context) ([]model.GlobalVerification, error)
	AddVerification(ctx context.Context, entry model.GlobalVerification) error
	ReplayVerifications(ctx context.Context, entries []model.GlobalVerification) (int, error)
}

var (
	_ RemoteStore = (*Remote)(nil)
	_ RemoteStore = Disabled{}
)

// ProvideRemote wires the repositories onto the configured sources. The log
// repository uses ClickHouse when available, otherwise MySQL.
func ProvideRemote(m database.Manager, dbConf database.Database, conf Conf) RemoteStore {
	if m.MySQL() == nil {
		return Disabled{}
	}

	if dbConf.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := Migrate(ctx, m); err != nil {
			// 远端暂不可达时由同步引擎负责重连，这里只记录
			log.Warnw("auto migrate failed", "error", err)
		}
	}

	teams := NewTeamRepo(m.MySQL())
	if ch := m.ClickHouse(); ch != nil {
		return NewRemote(teams, NewVerificationRepo(ch, false), conf)
	}
	return NewRemote(teams, NewVerificationRepo(m.MySQL(), true), conf)
}
