package syncer

import (
	"context"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/log"
	"github.com/go-arcade/qaboard/pkg/metrics"
)

// Outcome 日志条目最终落点
type Outcome string

const (
	OutcomeRemote Outcome = "remote"
	OutcomeLocal  Outcome = "local"
)

// Result reports where an appended log entry landed. Err carries the remote
// error when the entry fell back to the local store.
type Result struct {
	Id      string  `json:"id"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

func (r Result) Synced() bool {
	return r.Outcome == OutcomeRemote
}

// AddGlobalVerification prepends entry to the log. Appends are serialized in
// call order. Memory and the local store always receive the entry; the
// remote insert happens only while connected, otherwise the entry waits for
// the next successful reconnect.
func (e *Engine) AddGlobalVerification(ctx context.Context, entry model.GlobalVerification) Result {
	e.appendMu.Lock()
	defer e.appendMu.Unlock()

	entry = entry.Clone()

	e.mu.Lock()
	entries := make([]model.GlobalVerification, 0, len(e.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, e.entries...)
	e.entries = entries
	e.mu.Unlock()

	e.local.SaveVerifications(entries)
	e.changed()

	if !e.IsConnected() {
		e.enqueue(entry)
		metrics.RecordLogAppend(string(OutcomeLocal))
		return Result{Id: entry.Id, Outcome: OutcomeLocal}
	}

	err := e.call(ctx, "add_verification", func(ctx context.Context) error {
		return e.remote.AddVerification(ctx, entry)
	})
	if err != nil {
		e.enqueue(entry)
		e.markDisconnected("append verification failed", err)
		metrics.RecordLogAppend(string(OutcomeLocal))
		return Result{Id: entry.Id, Outcome: OutcomeLocal, Err: err}
	}

	metrics.RecordLogAppend(string(OutcomeRemote))
	return Result{Id: entry.Id, Outcome: OutcomeRemote}
}

func (e *Engine) enqueue(entry model.GlobalVerification) {
	e.mu.Lock()
	e.pending = append(e.pending, entry)
	n := len(e.pending)
	e.mu.Unlock()
	e.reportPending(n)
	log.Debugw("verification queued for replay", "id", entry.Id, "pending", n)
}

func (e *Engine) reportPending(n int) {
	metrics.SetPendingReplay(n)
	e.changed()
}
