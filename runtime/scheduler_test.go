// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerSubmitRunsTask(t *testing.T) {
	s := NewScheduler(2, nil)
	s.Start()
	defer s.Stop()

	done := make(chan struct{})
	s.Submit(func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted task never ran")
	}
}

// TestSchedulerWorkerRunsOwnQueuedTasks is the regression test for the
// worker-loop queue-disconnection fix: every task submitted, even one
// landing on a worker that never needs to steal to find it, must run.
func TestSchedulerWorkerRunsOwnQueuedTasks(t *testing.T) {
	s := NewScheduler(4, nil)

	const n = 200
	var ran atomic.Int64
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		s.Submit(func(ctx context.Context) {
			if ran.Add(1) == n {
				close(done)
			}
		})
	}

	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("only %d/%d tasks ran", ran.Load(), n)
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(1, nil)
	s.Start()
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	s := NewScheduler(1, nil)
	s.Start()
	s.Start()
	defer s.Stop()
	require.True(t, s.IsRunning())
}

func TestSchedulerQueueDepthsReportsPerWorker(t *testing.T) {
	s := NewScheduler(3, nil)
	depths := s.QueueDepths()
	require.Len(t, depths, 3)
	for _, d := range depths {
		require.Equal(t, 0, d)
	}
}
