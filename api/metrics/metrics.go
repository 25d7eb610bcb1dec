// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wraps the prometheus client with the Registerer/
// Registry/MultiGatherer shape used across leanr, so the runtime and
// kernel packages never import prometheus directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registerer is an interface for registering prometheus metrics.
type Registerer interface {
	prometheus.Registerer
}

// Registry is an interface for a prometheus registry.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewRegistry creates a new prometheus registry.
func NewRegistry() Registry {
	return prometheus.NewRegistry()
}

// MultiGatherer is a prometheus gatherer that gathers from multiple
// named sub-gatherers (one per runtime instance, typically).
type MultiGatherer interface {
	prometheus.Gatherer

	// Register adds a new gatherer to this multi-gatherer.
	Register(string, prometheus.Gatherer) error
}

type multiGatherer struct {
	gatherers map[string]prometheus.Gatherer
}

// NewMultiGatherer creates a new multi-gatherer.
func NewMultiGatherer() MultiGatherer {
	return &multiGatherer{
		gatherers: make(map[string]prometheus.Gatherer),
	}
}

func (mg *multiGatherer) Register(name string, gatherer prometheus.Gatherer) error {
	mg.gatherers[name] = gatherer
	return nil
}

func (mg *multiGatherer) Gather() ([]*dto.MetricFamily, error) {
	var result []*dto.MetricFamily
	for _, g := range mg.gatherers {
		families, err := g.Gather()
		if err != nil {
			return nil, err
		}
		result = append(result, families...)
	}
	return result, nil
}

// Metrics is the interface for actor-runtime metrics.
type Metrics interface {
	// AgentsSpawned tracks the number of agents spawned.
	AgentsSpawned() prometheus.Counter

	// MessagesSent tracks messages successfully enqueued to a mailbox.
	MessagesSent() prometheus.Counter

	// MessagesReceived tracks messages successfully dequeued.
	MessagesReceived() prometheus.Counter

	// TasksExecuted tracks scheduler dispatch-loop completions.
	TasksExecuted() prometheus.Counter

	// SpawnLatencyEMA reports the exponential moving average of spawn latency, in nanoseconds.
	SpawnLatencyEMA() prometheus.Gauge

	// SendLatencyEMA reports the exponential moving average of send latency, in nanoseconds.
	SendLatencyEMA() prometheus.Gauge
}

// NewMetrics creates and registers a Metrics instance under namespace.
func NewMetrics(namespace string, registerer prometheus.Registerer) (Metrics, error) {
	m := &metrics{
		agentsSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "agents_spawned_total", Help: "Number of agents spawned.",
		}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_sent_total", Help: "Number of messages enqueued to a mailbox.",
		}),
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_received_total", Help: "Number of messages dequeued from a mailbox.",
		}),
		tasksExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_executed_total", Help: "Number of scheduler tasks run to completion.",
		}),
		spawnLatencyEMA: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "spawn_latency_ema_ns", Help: "EMA of agent spawn latency in nanoseconds.",
		}),
		sendLatencyEMA: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "send_latency_ema_ns", Help: "EMA of mailbox send latency in nanoseconds.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.agentsSpawned, m.messagesSent, m.messagesReceived, m.tasksExecuted,
		m.spawnLatencyEMA, m.sendLatencyEMA,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

type metrics struct {
	agentsSpawned    prometheus.Counter
	messagesSent     prometheus.Counter
	messagesReceived prometheus.Counter
	tasksExecuted    prometheus.Counter
	spawnLatencyEMA  prometheus.Gauge
	sendLatencyEMA   prometheus.Gauge
}

func (m *metrics) AgentsSpawned() prometheus.Counter     { return m.agentsSpawned }
func (m *metrics) MessagesSent() prometheus.Counter      { return m.messagesSent }
func (m *metrics) MessagesReceived() prometheus.Counter  { return m.messagesReceived }
func (m *metrics) TasksExecuted() prometheus.Counter     { return m.tasksExecuted }
func (m *metrics) SpawnLatencyEMA() prometheus.Gauge     { return m.spawnLatencyEMA }
func (m *metrics) SendLatencyEMA() prometheus.Gauge      { return m.sendLatencyEMA }
