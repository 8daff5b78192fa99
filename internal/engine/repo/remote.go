package repo

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/database"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/retry"
)

// ErrRemoteDisabled is returned by every call when no remote source is configured.
var ErrRemoteDisabled = errors.New("remote store is not configured")

// Conf 远端调用的重试参数
type Conf struct {
	MaxRetries     int           `mapstructure:"maxRetries"`
	InitialDelay   time.Duration `mapstructure:"initialDelay"`
	AttemptTimeout time.Duration `mapstructure:"attemptTimeout"`
}

func (c *Conf) SetDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = retry.DefaultMaxRetries
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = retry.DefaultInitialDelay
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = retry.DefaultAttemptTimeout
	}
}

// Remote is the relational remote store. Every call goes through the retry
// wrapper.
type Remote struct {
	teams         ITeamRepository
	verifications IVerificationRepository
	opts          []retry.Option
}

func NewRemote(teams ITeamRepository, verifications IVerificationRepository, conf Conf) *Remote {
	conf.SetDefaults()
	return &Remote{
		teams:         teams,
		verifications: verifications,
		opts: []retry.Option{
			retry.WithMaxAttempts(conf.MaxRetries),
			retry.WithInitialDelay(conf.InitialDelay),
			retry.WithAttemptTimeout(conf.AttemptTimeout),
			retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
				log.Debugw("remote call failed, retrying", "attempt", attempt, "wait", wait, "error", err)
			}),
		},
	}
}

// Ping runs the health probe (a count on teams).
func (r *Remote) Ping(ctx context.Context) error {
	_, err := retry.DoValue(ctx, r.teams.Count, r.opts...)
	return err
}

// LoadTeams returns all remote teams ordered by order.
func (r *Remote) LoadTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := retry.DoValue(ctx, r.teams.List, r.opts...)
	if err != nil {
		return nil, err
	}
	teams := make([]model.Team, 0, len(rows))
	for _, row := range rows {
		t, err := row.ToTeam()
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// UpsertTeams writes every team, stamping updated_at with now.
func (r *Remote) UpsertTeams(ctx context.Context, teams []model.Team, now time.Time) error {
	rows := make([]model.TeamRow, 0, len(teams))
	for _, t := range teams {
		row, err := t.ToRow(now)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return retry.Do(ctx, func(ctx context.Context) error {
		return r.teams.BatchUpsert(ctx, rows)
	}, r.opts...)
}

// PruneTeams deletes remote teams whose id is not in keep.
func (r *Remote) PruneTeams(ctx context.Context, keep []int64) error {
	remoteIds, err := retry.DoValue(ctx, r.teams.ListIds, r.opts...)
	if err != nil {
		return err
	}
	keepSet := make(map[int64]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	var stale []int64
	for _, id := range remoteIds {
		if _, ok := keepSet[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return retry.Do(ctx, func(ctx context.Context) error {
		return r.teams.DeleteByIds(ctx, stale)
	}, r.opts...)
}

// LoadVerifications returns the whole log, newest first.
func (r *Remote) LoadVerifications(ctx context.Context) ([]model.GlobalVerification, error) {
	rows, err := retry.DoValue(ctx, r.verifications.List, r.opts...)
	if err != nil {
		return nil, err
	}
	out := make([]model.GlobalVerification, 0, len(rows))
	for _, row := range rows {
		g, err := row.ToVerification()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// AddVerification inserts one log entry.
func (r *Remote) AddVerification(ctx context.Context, entry model.GlobalVerification) error {
	row, err := entry.ToRow()
	if err != nil {
		return err
	}
	return retry.Do(ctx, func(ctx context.Context) error {
		return r.verifications.Insert(ctx, row)
	}, r.opts...)
}

// ReplayVerifications inserts entries the remote does not have yet.
func (r *Remote) ReplayVerifications(ctx context.Context, entries []model.GlobalVerification) (int, error) {
	rows := make([]model.VerificationRow, 0, len(entries))
	for _, e := range entries {
		row, err := e.ToRow()
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	return retry.DoValue(ctx, func(ctx context.Context) (int, error) {
		return r.verifications.InsertMissing(ctx, rows)
	}, r.opts...)
}

// Disabled stands in for the remote store when no database is configured;
// the engine then stays disconnected and works from the local store.
type Disabled struct{}

func (Disabled) Ping(context.Context) error { return ErrRemoteDisabled }
func (Disabled) LoadTeams(context.Context) ([]model.Team, error) {
	return nil, ErrRemoteDisabled
}
func (Disabled) UpsertTeams(context.Context, []model.Team, time.Time) error {
	return ErrRemoteDisabled
}
func (Disabled) PruneTeams(context.Context, []int64) error { return ErrRemoteDisabled }
func (Disabled) LoadVerifications(context.Context) ([]model.GlobalVerification, error) {
	return nil, ErrRemoteDisabled
}
func (Disabled) AddVerification(context.Context, model.GlobalVerification) error {
	return ErrRemoteDisabled
}
func (Disabled) ReplayVerifications(context.Context, []model.GlobalVerification) (int, error) {
	return 0, ErrRemoteDisabled
}

// Migrate creates the remote tables. The log table goes to ClickHouse when
// it is configured.
func Migrate(ctx context.Context, m database.Manager) error {
	if m.MySQL() == nil {
		return ErrRemoteDisabled
	}
	if err := m.MySQL().WithContext(ctx).AutoMigrate(&model.TeamRow{}); err != nil {
		return err
	}
	if ch := m.ClickHouse(); ch != nil {
		return ch.WithContext(ctx).
			Set("gorm:table_options", "ENGINE=ReplacingMergeTree() ORDER BY (team_id, timestamp, id)").
			AutoMigrate(&model.VerificationRow{})
	}
	return m.MySQL().WithContext(ctx).AutoMigrate(&model.VerificationRow{})
}
