// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	stdruntime "runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leanr-go/leanr/api/health"
	apimetrics "github.com/leanr-go/leanr/api/metrics"
	"github.com/leanr-go/leanr/utils"
	mathutil "github.com/leanr-go/leanr/utils/math"
)

// Config configures a Runtime's scheduler and default mailbox sizing.
type Config struct {
	WorkerThreads          int
	DefaultMailboxCapacity int
}

// DefaultConfig mirrors the runtime's own defaults: one worker per
// logical core, the standard 1000/800/200 mailbox watermarks.
func DefaultConfig() Config {
	return Config{
		WorkerThreads:          stdruntime.GOMAXPROCS(0),
		DefaultMailboxCapacity: DefaultMailboxConfig().Capacity,
	}
}

// Deps bundles the external collaborators a Runtime needs to stand up
// its metrics collector, split out from Config the way the teacher
// separates tunable parameters from wired-in dependencies.
type Deps struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// runState is the Runtime's coarse lifecycle state.
type runState uint8

const (
	stateStopped runState = iota
	stateRunning
)

// Runtime is the top-level façade over a Scheduler and its Metrics: a
// single value an embedder constructs once, starts, and stops.
type Runtime struct {
	config    Config
	scheduler *Scheduler
	metrics   *Metrics
	state     *utils.Atomic[runState]
}

// New constructs a Runtime, registering its metrics collector under
// deps.Namespace against deps.Registerer.
func New(config Config, deps Deps) (*Runtime, error) {
	collector, err := apimetrics.NewMetrics(deps.Namespace, deps.Registerer)
	if err != nil {
		return nil, err
	}
	metrics := NewMetrics(collector)
	return &Runtime{
		config:    config,
		scheduler: NewScheduler(config.WorkerThreads, metrics),
		metrics:   metrics,
		state:     utils.NewAtomic(stateStopped),
	}, nil
}

// Start launches the runtime's scheduler workers. A Start on an
// already-running Runtime is a no-op, matching Scheduler.Start.
func (r *Runtime) Start() {
	r.scheduler.Start()
	r.state.Set(stateRunning)
}

// Stop signals the scheduler to drain and waits for its workers to
// join.
func (r *Runtime) Stop() error {
	err := r.scheduler.Stop()
	r.state.Set(stateStopped)
	return err
}

// IsRunning reports whether the runtime is currently dispatching.
func (r *Runtime) IsRunning() bool { return r.state.Get() == stateRunning }

// Metrics returns the runtime's metrics collector.
func (r *Runtime) Metrics() *Metrics { return r.metrics }

// Scheduler returns the runtime's underlying scheduler, for callers
// that need to submit bare tasks rather than spawn an agent.
func (r *Runtime) Scheduler() *Scheduler { return r.scheduler }

// Health reports whether the runtime is dispatching and how evenly its
// workers are loaded, satisfying health.Checkable.
func (r *Runtime) Health(ctx context.Context) (interface{}, error) {
	start := time.Now()

	runningCheck := health.Check{
		Name:     "scheduler_running",
		Healthy:  r.IsRunning(),
		Duration: time.Since(start),
	}

	depths := r.scheduler.QueueDepths()
	var maxDepth, minDepth uint64
	if len(depths) > 0 {
		minDepth = uint64(depths[0])
		for _, d := range depths {
			ud := uint64(d)
			maxDepth = mathutil.Max64(maxDepth, ud)
			minDepth = mathutil.Min64(minDepth, ud)
		}
	}
	imbalance := mathutil.AbsDiff(maxDepth, minDepth)
	balanceCheck := health.Check{
		Name:    "queue_balance",
		Healthy: imbalance <= localQueueCapacity/2,
		Details: map[string]interface{}{
			"max_depth": maxDepth,
			"min_depth": minDepth,
			"imbalance": imbalance,
		},
		Duration: time.Since(start),
	}

	report := health.Report{
		Healthy:  runningCheck.Healthy && balanceCheck.Healthy,
		Checks:   []health.Check{runningCheck, balanceCheck},
		Duration: time.Since(start),
	}
	return report, nil
}

// SpawnMetered spawns behavior as a new agent on rt's scheduler and
// records the spawn latency against rt's metrics. It is a free
// function rather than a method because Go methods cannot themselves
// be generic; Runtime stays a concrete, non-generic type.
func SpawnMetered[T any](rt *Runtime, behavior func(ctx context.Context, mb *Mailbox[T])) AgentRef[T] {
	start := time.Now()
	agent := Spawn[T](rt.scheduler, behavior)
	rt.metrics.RecordSpawn(time.Since(start))
	return agent
}

