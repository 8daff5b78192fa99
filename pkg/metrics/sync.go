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

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// outcome 标签取值
const (
	OutcomeRemote = "remote"
	OutcomeLocal  = "local"
	OutcomeFailed = "failed"
)

var (
	// SyncSaveCyclesTotal counts persist cycles by where the state landed
	SyncSaveCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qaboard_sync_save_cycles_total",
			Help: "Total number of debounced save cycles",
		},
		[]string{"outcome"},
	)

	// SyncLogAppendsTotal counts verification log appends
	SyncLogAppendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qaboard_sync_log_appends_total",
			Help: "Total number of verification log appends",
		},
		[]string{"outcome"},
	)

	// SyncConnected is 1 while the session is connected to the remote store
	SyncConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qaboard_sync_connected",
			Help: "Whether the sync session is connected to the remote store",
		},
	)

	// SyncPendingReplay is the number of log entries waiting for a reconnect
	SyncPendingReplay = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qaboard_sync_pending_replay",
			Help: "Verification log entries not yet written to the remote store",
		},
	)

	// RemoteCallDurationSeconds measures remote store calls including retries
	RemoteCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qaboard_remote_call_duration_seconds",
			Help:    "Duration of remote store calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~65s
		},
		[]string{"op", "result"},
	)

	syncMetricsOnce sync.Once
)

// RegisterSyncMetrics registers all sync-related metrics
func RegisterSyncMetrics(registry *prometheus.Registry) {
	syncMetricsOnce.Do(func() {
		registry.MustRegister(
			SyncSaveCyclesTotal,
			SyncLogAppendsTotal,
			SyncConnected,
			SyncPendingReplay,
			RemoteCallDurationSeconds,
		)
	})
}

func RecordSaveCycle(outcome string) {
	SyncSaveCyclesTotal.WithLabelValues(outcome).Inc()
}

func RecordLogAppend(outcome string) {
	SyncLogAppendsTotal.WithLabelValues(outcome).Inc()
}

func SetConnected(connected bool) {
	if connected {
		SyncConnected.Set(1)
		return
	}
	SyncConnected.Set(0)
}

func SetPendingReplay(n int) {
	SyncPendingReplay.Set(float64(n))
}

// ObserveRemoteCall records the duration of one remote call started at start
func ObserveRemoteCall(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RemoteCallDurationSeconds.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}
