// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"sync"
	"time"
)

// AgentProfile is an EMA-smoothed per-agent service-time estimate,
// updated by the scheduler after each task attributed to an agent.
// The scheduler's victim selection does not read it: stealWork picks
// victims purely at random.
type AgentProfile struct {
	AgentID         uint64
	AvgServiceTime  time.Duration
	MessagesHandled uint64
	LastActive      time.Time
}

const profileEMAAlpha = 0.1

func (p *AgentProfile) update(execTime time.Duration, now time.Time) {
	p.MessagesHandled++
	p.LastActive = now
	if p.AvgServiceTime == 0 {
		p.AvgServiceTime = execTime
		return
	}
	newAvg := profileEMAAlpha*execTime.Seconds() + (1-profileEMAAlpha)*p.AvgServiceTime.Seconds()
	p.AvgServiceTime = time.Duration(newAvg * float64(time.Second))
}

// profileTable is the scheduler's agent_id -> AgentProfile map, guarded
// by a single mutex; updates happen off the hot dispatch path (after a
// task finishes running, not before it is picked up), so lock
// contention here never delays a steal or a pop.
type profileTable struct {
	mu       sync.Mutex
	profiles map[uint64]*AgentProfile
}

func newProfileTable() *profileTable {
	return &profileTable{profiles: make(map[uint64]*AgentProfile)}
}

func (t *profileTable) update(agentID uint64, execTime time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.profiles[agentID]
	if !ok {
		p = &AgentProfile{AgentID: agentID}
		t.profiles[agentID] = p
	}
	p.update(execTime, time.Now())
}

func (t *profileTable) get(agentID uint64) (AgentProfile, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.profiles[agentID]
	if !ok {
		return AgentProfile{}, false
	}
	return *p, true
}
