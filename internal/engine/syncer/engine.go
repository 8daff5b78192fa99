// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/internal/engine/repo"
	"github.com/go-arcade/qaboard/internal/engine/store"
	"github.com/go-arcade/qaboard/pkg/debounce"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/metrics"
	"github.com/go-arcade/qaboard/pkg/statemachine"
)

// Engine is one sync session. It owns the in-memory team tree and the
// verification log, persists edits to the remote store with a local
// fallback, and tracks connectivity.
//
// startMu is taken before appendMu or saveMu, never after; mu is innermost.
// Remote I/O never runs while mu is held.
type Engine struct {
	conf   Conf
	remote repo.RemoteStore
	local  *store.LocalStore
	conn   *statemachine.StateMachine[statemachine.ConnState]
	now    func() time.Time

	mu      sync.RWMutex
	teams   []model.Team
	entries []model.GlobalVerification // newest first
	pending []model.GlobalVerification // not yet on remote, oldest first
	version uint64                     // bumped on every team edit
	synced  uint64                     // version last pushed to or adopted from the remote
	dirty   bool                       // team edits that only reached the local store

	startMu  sync.Mutex
	appendMu sync.Mutex
	saveMu   sync.Mutex

	saver *debounce.Debouncer

	retryMu    sync.Mutex
	retryTimer *time.Timer
	retryCount int

	loading atomic.Bool
	closed  atomic.Bool

	watchMu  sync.RWMutex
	watchers []func()

	ctx    context.Context
	cancel context.CancelFunc
}

// Status is a point-in-time view of the session.
type Status struct {
	State           statemachine.ConnState `json:"state"`
	Connected       bool                   `json:"connected"`
	Loading         bool                   `json:"loading"`
	Dirty           bool                   `json:"dirty"`
	PendingLog      int                    `json:"pendingLog"`
	StartupAttempts int                    `json:"startupAttempts"`
	Teams           int                    `json:"teams"`
	Verifications   int                    `json:"verifications"`
}

// NewEngine creates a session seeded from the local store. Nothing touches
// the remote store until Start.
func NewEngine(conf Conf, remote repo.RemoteStore, local *store.LocalStore) *Engine {
	conf.SetDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		conf:    conf,
		remote:  remote,
		local:   local,
		conn:    statemachine.NewConnStateMachine(),
		now:     time.Now,
		teams:   local.GetTeams(),
		entries: local.GetVerifications(),
		ctx:     ctx,
		cancel:  cancel,
	}
	e.saver = debounce.New(conf.SaveDebounce, e.persistBackground)
	e.conn.OnTransition(func(from, to statemachine.ConnState) {
		log.Infow("sync connectivity changed", "from", from, "to", to)
		metrics.SetConnected(to == statemachine.ConnConnected)
		e.changed()
	})
	metrics.SetConnected(false)

	log.Infow("sync engine created",
		"teams", len(e.teams),
		"verifications", len(e.entries),
		"debounce", conf.SaveDebounce,
	)
	return e
}

// State returns the connectivity state.
func (e *Engine) State() statemachine.ConnState {
	return e.conn.Current()
}

func (e *Engine) IsConnected() bool {
	return e.conn.Is(statemachine.ConnConnected)
}

// IsLoading reports whether a startup attempt is in flight.
func (e *Engine) IsLoading() bool {
	return e.loading.Load()
}

func (e *Engine) Status() Status {
	e.mu.RLock()
	st := Status{
		Dirty:         e.dirty,
		PendingLog:    len(e.pending),
		Teams:         len(e.teams),
		Verifications: len(e.entries),
	}
	e.mu.RUnlock()

	e.retryMu.Lock()
	st.StartupAttempts = e.retryCount
	e.retryMu.Unlock()

	st.State = e.State()
	st.Connected = st.State == statemachine.ConnConnected
	st.Loading = e.IsLoading()
	return st
}

// Teams returns a deep copy of the current team list.
func (e *Engine) Teams() []model.Team {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return model.CloneTeams(e.teams)
}

// Verifications returns a copy of the verification log, newest first.
func (e *Engine) Verifications() []model.GlobalVerification {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.GlobalVerification, len(e.entries))
	for i, g := range e.entries {
		out[i] = g.Clone()
	}
	return out
}

// SetTeams replaces the team list. The change is visible immediately and
// persisted after the debounce window.
func (e *Engine) SetTeams(teams []model.Team) {
	next := model.CloneTeams(teams)
	if next == nil {
		next = []model.Team{}
	}
	e.mu.Lock()
	e.teams = next
	e.version++
	e.mu.Unlock()
	e.saver.Trigger()
	e.changed()
}

// UpdateTeams applies fn to a copy of the current list and stores the
// result. When fn fails nothing is stored and no save is scheduled. fn runs
// under the engine lock and must not call back into the engine.
func (e *Engine) UpdateTeams(fn func([]model.Team) ([]model.Team, error)) ([]model.Team, error) {
	e.mu.Lock()
	next, err := fn(model.CloneTeams(e.teams))
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if next == nil {
		next = []model.Team{}
	}
	e.teams = next
	e.version++
	out := model.CloneTeams(next)
	e.mu.Unlock()

	e.saver.Trigger()
	e.changed()
	return out, nil
}

// Flush runs a pending debounced save now.
func (e *Engine) Flush(ctx context.Context) error {
	if !e.saver.Cancel() {
		return nil
	}
	return e.saveCycle(ctx)
}

// Close flushes pending edits and stops all timers. The engine is unusable
// afterwards.
func (e *Engine) Close(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.stopRetry()
	err := e.Flush(ctx)
	e.saver.Stop()
	e.cancel()
	log.Infow("sync engine closed", "state", e.State())
	return err
}

// OnChange registers fn to run whenever the status or the team list may have
// changed. fn can be called with engine locks held and must not block or call
// back into the engine synchronously.
func (e *Engine) OnChange(fn func()) {
	e.watchMu.Lock()
	e.watchers = append(e.watchers, fn)
	e.watchMu.Unlock()
}

func (e *Engine) changed() {
	e.watchMu.RLock()
	defer e.watchMu.RUnlock()
	for _, fn := range e.watchers {
		fn()
	}
}

func (e *Engine) transition(to statemachine.ConnState, reason string) {
	if err := e.conn.TransitionTo(to, reason); err != nil {
		log.Warnw("sync state transition rejected", "to", to, "reason", reason, "error", err)
	}
}

func (e *Engine) markDisconnected(reason string, err error) {
	log.Warnw("remote store unavailable, working locally", "reason", reason, "error", err)
	e.transition(statemachine.ConnDisconnected, reason)
}

// call runs one remote operation and records its latency.
func (e *Engine) call(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	metrics.ObserveRemoteCall(op, start, err)
	return err
}

// hasUnsynced reports whether memory holds anything the remote has not
// seen. An edit still waiting on the debounced save counts too.
func (e *Engine) hasUnsynced() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dirty || e.version != e.synced || len(e.pending) > 0
}

func (e *Engine) teamsAt() ([]model.Team, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return model.CloneTeams(e.teams), e.version
}

func (e *Engine) markSynced(version uint64) {
	e.mu.Lock()
	if version > e.synced {
		e.synced = version
	}
	e.mu.Unlock()
}

func teamIds(teams []model.Team) []int64 {
	ids := make([]int64, len(teams))
	for i, t := range teams {
		ids[i] = t.Id
	}
	return ids
}
