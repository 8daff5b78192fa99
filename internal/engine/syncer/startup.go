package syncer

import (
	"context"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/safe"
	"github.com/go-arcade/qaboard/pkg/statemachine"
	"golang.org/x/sync/errgroup"
)

// Start runs the first startup attempt synchronously. On failure further
// attempts are scheduled in the background with exponential backoff.
func (e *Engine) Start(ctx context.Context) statemachine.ConnState {
	e.restart(ctx)
	return e.State()
}

// Reconnect runs a startup attempt on demand with a fresh retry budget.
func (e *Engine) Reconnect(ctx context.Context) statemachine.ConnState {
	e.restart(ctx)
	return e.State()
}

func (e *Engine) restart(ctx context.Context) {
	e.stopRetry()
	e.retryMu.Lock()
	e.retryCount = 0
	e.retryMu.Unlock()
	e.attempt(ctx)
}

// attempt 一次启动尝试：健康探测，然后拉取远端或推送本地未同步的修改
func (e *Engine) attempt(ctx context.Context) {
	e.startMu.Lock()
	defer e.startMu.Unlock()
	if e.closed.Load() {
		return
	}

	e.loading.Store(true)
	e.changed()
	defer func() {
		e.loading.Store(false)
		e.changed()
	}()

	if err := e.call(ctx, "ping", e.remote.Ping); err != nil {
		e.markDisconnected("health probe failed", err)
		e.scheduleRetry()
		return
	}
	e.transition(statemachine.ConnConnected, "health probe ok")

	var err error
	if e.hasUnsynced() {
		err = e.pushLocal(ctx)
	} else {
		err = e.pullRemote(ctx)
	}
	if err != nil {
		e.markDisconnected("initial sync failed", err)
		e.scheduleRetry()
		return
	}

	e.retryMu.Lock()
	e.retryCount = 0
	e.retryMu.Unlock()
}

// pullRemote overwrites memory and the local store with the remote state.
func (e *Engine) pullRemote(ctx context.Context) error {
	// 持有 appendMu，避免加载期间追加的日志被远端结果覆盖
	e.appendMu.Lock()
	defer e.appendMu.Unlock()

	e.mu.RLock()
	version := e.version
	known := e.entries
	e.mu.RUnlock()

	var (
		teams   []model.Team
		entries []model.GlobalVerification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.call(gctx, "load_teams", func(ctx context.Context) (err error) {
			teams, err = e.remote.LoadTeams(ctx)
			return err
		})
	})
	g.Go(func() error {
		return e.call(gctx, "load_verifications", func(ctx context.Context) (err error) {
			entries, err = e.remote.LoadVerifications(ctx)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// 上次进程退出时仍未同步的日志只存在于本地，先补写到远端再采用远端日志
	if orphans := localOnly(known, entries); len(orphans) > 0 {
		log.Warnw("local log holds verifications missing from the remote store, replaying", "entries", len(orphans))
		var replayed int
		err := e.call(ctx, "replay_verifications", func(ctx context.Context) (err error) {
			replayed, err = e.remote.ReplayVerifications(ctx, orphans)
			return err
		})
		if err != nil {
			return err
		}
		err = e.call(ctx, "load_verifications", func(ctx context.Context) (err error) {
			entries, err = e.remote.LoadVerifications(ctx)
			return err
		})
		if err != nil {
			return err
		}
		log.Infow("replayed local-only verifications", "submitted", len(orphans), "inserted", replayed)
	}

	if teams == nil {
		teams = []model.Team{}
	}
	for i := range teams {
		teams[i].Normalize()
	}
	if entries == nil {
		entries = []model.GlobalVerification{}
	}

	e.mu.Lock()
	e.entries = entries
	edited := e.version != version
	if !edited {
		e.teams = teams
		e.synced = e.version
	}
	e.mu.Unlock()

	e.local.SaveVerifications(entries)
	if edited {
		// 加载期间有新的编辑，保留内存状态，交给保存周期推送
		log.Infow("teams edited during load, keeping local edits")
		e.saver.Trigger()
	} else {
		e.local.SaveTeams(teams)
	}

	log.Infow("loaded state from remote store", "teams", len(teams), "verifications", len(entries))
	return nil
}

// pushLocal pushes offline edits to the remote store instead of discarding
// them, then reloads the log.
func (e *Engine) pushLocal(ctx context.Context) error {
	e.saver.Cancel()
	if err := e.saveCycle(ctx); err != nil {
		return err
	}

	e.appendMu.Lock()
	defer e.appendMu.Unlock()

	e.mu.RLock()
	pending := append([]model.GlobalVerification(nil), e.pending...)
	e.mu.RUnlock()

	if len(pending) > 0 {
		var replayed int
		err := e.call(ctx, "replay_verifications", func(ctx context.Context) (err error) {
			replayed, err = e.remote.ReplayVerifications(ctx, pending)
			return err
		})
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.pending = e.pending[len(pending):]
		left := len(e.pending)
		e.mu.Unlock()
		e.reportPending(left)
		log.Infow("replayed offline verifications", "submitted", len(pending), "inserted", replayed)
	}

	var entries []model.GlobalVerification
	err := e.call(ctx, "load_verifications", func(ctx context.Context) (err error) {
		entries, err = e.remote.LoadVerifications(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []model.GlobalVerification{}
	}
	e.mu.Lock()
	e.entries = entries
	e.mu.Unlock()
	e.local.SaveVerifications(entries)
	return nil
}

// localOnly returns the entries of known (newest first) whose ids are absent
// from remote, oldest first.
func localOnly(known, remote []model.GlobalVerification) []model.GlobalVerification {
	if len(known) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(remote))
	for _, v := range remote {
		ids[v.Id] = struct{}{}
	}
	var out []model.GlobalVerification
	for i := len(known) - 1; i >= 0; i-- {
		if _, ok := ids[known[i].Id]; !ok {
			out = append(out, known[i])
		}
	}
	return out
}

func (e *Engine) scheduleRetry() {
	e.retryMu.Lock()
	defer e.retryMu.Unlock()

	e.retryCount++
	if e.retryCount >= e.conf.StartupAttempts {
		log.Warnw("startup attempts exhausted, staying offline", "attempts", e.retryCount)
		return
	}
	if e.closed.Load() {
		return
	}

	delay := e.conf.startupDelay(e.retryCount - 1)
	log.Infow("scheduling startup retry", "attempt", e.retryCount+1, "delay", delay)
	e.retryTimer = time.AfterFunc(delay, func() {
		safe.Do("sync-startup-retry", func() {
			ctx, cancel := context.WithTimeout(e.ctx, e.conf.OpTimeout)
			defer cancel()
			e.attempt(ctx)
		})
	})
}

func (e *Engine) stopRetry() {
	e.retryMu.Lock()
	defer e.retryMu.Unlock()
	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
}
