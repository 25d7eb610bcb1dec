// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"sync"

	"github.com/leanr-go/leanr/utils/set"
)

// TopologyType selects how newly added agents are wired to the
// existing membership.
type TopologyType int

const (
	// Mesh connects every agent to every other agent.
	Mesh TopologyType = iota
	// Ring connects each agent to exactly its two ring neighbors.
	Ring
	// Star connects the first agent added (the hub) to every other
	// agent; every other agent connects only to the hub.
	Star
	// Hierarchical arranges agents into a binary tree in the order
	// they were added.
	Hierarchical
)

func (t TopologyType) String() string {
	switch t {
	case Mesh:
		return "mesh"
	case Ring:
		return "ring"
	case Star:
		return "star"
	case Hierarchical:
		return "hierarchical"
	default:
		return "unknown"
	}
}

// Topology tracks a membership of agents and the adjacency between
// them, recomputed as agents join.
type Topology[T any] struct {
	mu           sync.RWMutex
	topologyType TopologyType
	agents       []AgentRef[T]
	connections  map[uint64][]uint64
}

// NewTopology creates an empty topology of the given type.
func NewTopology[T any](topologyType TopologyType) *Topology[T] {
	return &Topology[T]{
		topologyType: topologyType,
		connections:  make(map[uint64][]uint64),
	}
}

// AddAgent admits agent into the topology and rewires adjacency
// according to the topology's type.
func (t *Topology[T]) AddAgent(agent AgentRef[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.agents = append(t.agents, agent)

	switch t.topologyType {
	case Mesh:
		t.connectMesh(agent.ID())
	case Ring:
		// The ring must stay a closed cycle after every admission, not
		// only once membership happens to settle; full adjacency is
		// rebuilt from the current membership order rather than patched
		// incrementally, since a patch that only touches the
		// newest and the previously-last node leaves every other node's
		// stale one-directional pointer in place.
		t.rebuildRing()
	case Star:
		t.connectStar(agent.ID())
	case Hierarchical:
		t.connectHierarchical(agent.ID())
	}
}

// Neighbors returns the agents adjacent to agentID, in the order the
// topology recorded them.
func (t *Topology[T]) Neighbors(agentID uint64) []AgentRef[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids, ok := t.connections[agentID]
	if !ok {
		return nil
	}
	byID := make(map[uint64]AgentRef[T], len(t.agents))
	for _, a := range t.agents {
		byID[a.ID()] = a
	}
	neighbors := make([]AgentRef[T], 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			neighbors = append(neighbors, a)
		}
	}
	return neighbors
}

// Connected reports whether a and b are directly adjacent, without the
// caller needing to linearly scan Neighbors(a) itself.
func (t *Topology[T]) Connected(a, b uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	neighbors := set.Of(t.connections[a]...)
	return neighbors.Contains(b)
}

// Agents returns every agent currently admitted, in admission order.
func (t *Topology[T]) Agents() []AgentRef[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]AgentRef[T], len(t.agents))
	copy(out, t.agents)
	return out
}

func (t *Topology[T]) connectMesh(agentID uint64) {
	var others []uint64
	for _, a := range t.agents {
		if a.ID() != agentID {
			others = append(others, a.ID())
		}
	}
	t.connections[agentID] = others
	for _, otherID := range others {
		t.connections[otherID] = append(t.connections[otherID], agentID)
	}
}

func (t *Topology[T]) rebuildRing() {
	n := len(t.agents)
	t.connections = make(map[uint64][]uint64, n)
	switch {
	case n == 0:
		return
	case n == 1:
		t.connections[t.agents[0].ID()] = nil
	case n == 2:
		a, b := t.agents[0].ID(), t.agents[1].ID()
		t.connections[a] = []uint64{b}
		t.connections[b] = []uint64{a}
	default:
		for i, agent := range t.agents {
			prev := t.agents[(i-1+n)%n].ID()
			next := t.agents[(i+1)%n].ID()
			t.connections[agent.ID()] = []uint64{prev, next}
		}
	}
}

func (t *Topology[T]) connectStar(agentID uint64) {
	n := len(t.agents)
	if n == 1 {
		t.connections[agentID] = nil
		return
	}
	hubID := t.agents[0].ID()
	if agentID == hubID {
		var spokes []uint64
		for _, a := range t.agents[1:] {
			spokes = append(spokes, a.ID())
		}
		t.connections[hubID] = spokes
		return
	}
	t.connections[agentID] = []uint64{hubID}
	t.connections[hubID] = append(t.connections[hubID], agentID)
}

func (t *Topology[T]) connectHierarchical(agentID uint64) {
	idx := len(t.agents) - 1
	if idx == 0 {
		t.connections[agentID] = nil
		return
	}
	parentID := t.agents[(idx-1)/2].ID()
	t.connections[agentID] = []uint64{parentID}
	t.connections[parentID] = append(t.connections[parentID], agentID)
}
