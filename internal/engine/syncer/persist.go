package syncer

import (
	"context"

	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/metrics"
)

func (e *Engine) persistBackground() {
	ctx, cancel := context.WithTimeout(e.ctx, e.conf.OpTimeout)
	defer cancel()
	_ = e.saveCycle(ctx)
}

// saveCycle persists the latest team snapshot. Connected: upsert every team,
// then delete remote teams missing from memory. The local store is written
// in every case. A remote failure marks the session disconnected.
func (e *Engine) saveCycle(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	teams, version := e.teamsAt()

	if !e.IsConnected() {
		e.local.SaveTeams(teams)
		e.setDirty(true)
		metrics.RecordSaveCycle(metrics.OutcomeLocal)
		log.Debugw("teams saved locally", "teams", len(teams), "state", e.State())
		return nil
	}

	now := e.now()
	err := e.call(ctx, "upsert_teams", func(ctx context.Context) error {
		return e.remote.UpsertTeams(ctx, teams, now)
	})
	if err == nil {
		err = e.call(ctx, "prune_teams", func(ctx context.Context) error {
			return e.remote.PruneTeams(ctx, teamIds(teams))
		})
	}

	e.local.SaveTeams(teams)
	if err != nil {
		e.setDirty(true)
		e.markDisconnected("save teams failed", err)
		metrics.RecordSaveCycle(metrics.OutcomeFailed)
		return err
	}

	e.markSynced(version)
	e.setDirty(false)
	metrics.RecordSaveCycle(metrics.OutcomeRemote)
	log.Debugw("teams saved", "teams", len(teams))
	return nil
}

func (e *Engine) setDirty(dirty bool) {
	e.mu.Lock()
	e.dirty = dirty
	e.mu.Unlock()
	e.changed()
}
