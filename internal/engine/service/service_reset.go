package service

import (
	"context"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/id"
	"github.com/go-arcade/qaboard/pkg/log"
)

// ResetResult is returned by the reset operations.
type ResetResult struct {
	Team    model.Team      `json:"team"`
	Entries []syncer.Result `json:"entries"`
}

// ResetFeature snapshots one feature into the global log and its own ring
// buffer, then sets every step back to pending.
func (s *BoardService) ResetFeature(ctx context.Context, teamId, featureId int64) (ResetResult, error) {
	return s.reset(ctx, teamId, &featureId)
}

// ResetTeam resets all features of a team. Every log entry of one team reset
// carries the same timestamp.
func (s *BoardService) ResetTeam(ctx context.Context, teamId int64) (ResetResult, error) {
	return s.reset(ctx, teamId, nil)
}

// reset 重置 featureId 指定的功能，nil 表示全部
func (s *BoardService) reset(ctx context.Context, teamId int64, featureId *int64) (ResetResult, error) {
	now := s.now()
	ts := now.UnixMilli()

	var entries []model.GlobalVerification
	t, err := s.editTeam(teamId, func(t *model.Team) error {
		for i := range t.Features {
			f := &t.Features[i]
			if featureId != nil && f.Id != *featureId {
				continue
			}
			entries = append(entries, model.NewGlobalVerification(id.GetUlidAt(now), ts, *t, *f))
			f.PushVerification(f.Snapshot(s.seq.Next(), ts))
			for j := range f.Steps {
				f.Steps[j].Status = model.StatusPending
				f.Steps[j].LastVerified = nil
			}
			f.Comments = []model.Comment{}
		}
		if featureId != nil && len(entries) == 0 {
			return ErrFeatureNotFound
		}
		return nil
	})
	if err != nil {
		return ResetResult{}, err
	}

	// 追加日志在 UpdateTeams 之外进行，引擎按调用顺序串行化
	out := ResetResult{Team: t, Entries: make([]syncer.Result, 0, len(entries))}
	for _, e := range entries {
		res := s.store.AddGlobalVerification(ctx, e)
		if res.Err != nil {
			log.Warnw("verification stored locally only", "id", res.Id, "error", res.Err)
		}
		out.Entries = append(out.Entries, res)
	}
	return out, nil
}
