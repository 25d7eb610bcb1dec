// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"testing"
	"time"

	apimetrics "github.com/leanr-go/leanr/api/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	registry := prometheus.NewRegistry()
	collector, err := apimetrics.NewMetrics("leanr_test", registry)
	require.NoError(t, err)
	return NewMetrics(collector)
}

func TestMetricsRecordSpawnBootstrapsEMA(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordSpawn(100 * time.Nanosecond)
	require.InDelta(t, 100, m.spawnEMANs, 0.001)

	m.RecordSpawn(200 * time.Nanosecond)
	require.InDelta(t, 110, m.spawnEMANs, 0.001)
}

func TestMetricsNilReceiverIsNoOp(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordSpawn(time.Microsecond)
		m.RecordMessageSent(time.Microsecond)
		m.RecordMessageReceived()
		m.RecordTaskExecuted()
	})
}
