// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/leanr-go/leanr/api/health"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(Config{WorkerThreads: 2}, Deps{
		Registerer: prometheus.NewRegistry(),
		Namespace:  "leanr_runtime_test",
	})
	require.NoError(t, err)
	return rt
}

func TestRuntimeStartStop(t *testing.T) {
	rt := newTestRuntime(t)
	require.False(t, rt.IsRunning())

	rt.Start()
	require.True(t, rt.IsRunning())

	require.NoError(t, rt.Stop())
	require.False(t, rt.IsRunning())
}

func TestRuntimeSpawnMeteredRecordsLatency(t *testing.T) {
	rt := newTestRuntime(t)
	rt.Start()
	defer rt.Stop()

	received := make(chan int, 1)
	agent := SpawnMetered[int](rt, func(ctx context.Context, mb *Mailbox[int]) {
		msg, err := mb.Recv(ctx)
		if err == nil {
			received <- msg.Payload()
		}
	})
	require.Greater(t, agent.ID(), uint64(0))

	require.NoError(t, Signal(agent, IsoMessage(5)))
	select {
	case v := <-received:
		require.Equal(t, 5, v)
	case <-time.After(time.Second):
		t.Fatal("spawned agent never received signal")
	}

	require.Greater(t, rt.Metrics().spawnEMANs, 0.0)
}

func TestRuntimeHealthReflectsLifecycle(t *testing.T) {
	rt := newTestRuntime(t)

	report, err := rt.Health(context.Background())
	require.NoError(t, err)
	unstarted, ok := report.(health.Report)
	require.True(t, ok)
	require.False(t, unstarted.Healthy)

	rt.Start()
	defer rt.Stop()

	report, err = rt.Health(context.Background())
	require.NoError(t, err)
	running, ok := report.(health.Report)
	require.True(t, ok)
	require.True(t, running.Healthy)
	require.Len(t, running.Checks, 2)
}
