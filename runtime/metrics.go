// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"sync"
	"time"

	apimetrics "github.com/leanr-go/leanr/api/metrics"
)

const metricsEMAAlpha = 0.1

// ema blends newValue into current at alpha=0.1, except on the very
// first sample (current == 0), which seeds the average outright rather
// than blending toward a meaningless zero baseline.
func ema(current, newValue float64) float64 {
	if current == 0 {
		return newValue
	}
	return metricsEMAAlpha*newValue + (1-metricsEMAAlpha)*current
}

// Metrics adds the EMA bookkeeping a prometheus Gauge cannot do on its
// own (a Gauge only stores whatever it was last Set to) on top of an
// api/metrics.Metrics collector. A nil *Metrics is valid and every
// method on it is a no-op, so callers that do not care about metrics
// can pass nil throughout rather than threading an interface check
// through every call site.
type Metrics struct {
	mu         sync.Mutex
	collector  apimetrics.Metrics
	spawnEMANs float64
	sendEMANs  float64
}

// NewMetrics wraps collector with EMA tracking for the two latency
// gauges it exposes.
func NewMetrics(collector apimetrics.Metrics) *Metrics {
	return &Metrics{collector: collector}
}

// RecordSpawn records one agent spawn and blends latency into the
// spawn-latency EMA gauge.
func (m *Metrics) RecordSpawn(latency time.Duration) {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.AgentsSpawned().Inc()
	m.mu.Lock()
	m.spawnEMANs = ema(m.spawnEMANs, float64(latency.Nanoseconds()))
	m.collector.SpawnLatencyEMA().Set(m.spawnEMANs)
	m.mu.Unlock()
}

// RecordMessageSent records one successful mailbox enqueue and blends
// latency into the send-latency EMA gauge.
func (m *Metrics) RecordMessageSent(latency time.Duration) {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.MessagesSent().Inc()
	m.mu.Lock()
	m.sendEMANs = ema(m.sendEMANs, float64(latency.Nanoseconds()))
	m.collector.SendLatencyEMA().Set(m.sendEMANs)
	m.mu.Unlock()
}

// RecordMessageReceived records one successful mailbox dequeue.
func (m *Metrics) RecordMessageReceived() {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.MessagesReceived().Inc()
}

// RecordTaskExecuted records one scheduler task run to completion.
func (m *Metrics) RecordTaskExecuted() {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.TasksExecuted().Inc()
}
