// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package elab

import (
	"errors"
	"fmt"

	"github.com/leanr-go/leanr/kernel"
)

// ErrMetavarAlreadyAssigned is returned by MetaVarContext.Assign when
// the metavariable already carries an assignment: like the kernel's
// Substitution, a metavariable is assigned at most once.
var ErrMetavarAlreadyAssigned = errors.New("elab: metavariable already assigned")

// ErrUnknownMetavar is returned by lookups on an id this context never
// minted.
var ErrUnknownMetavar = errors.New("elab: unknown metavariable")

// MetaVarInfo is the bookkeeping record for one elaboration hole: the
// type it must eventually inhabit, the context depth it was created
// at (so later occurs/scope checks can tell which locals it may
// legally mention), and its assignment once solved.
type MetaVarInfo struct {
	ID         kernel.MetaVarId
	Ty         kernel.TermId
	Depth      uint32
	Assignment *kernel.TermId
}

// MetaVarContext mints and tracks metavariables for one elaboration
// run (one declaration's worth of holes), mirroring the kernel's
// write-once Substitution but keyed by MetaVarId directly so the
// elaborator can also recover a hole's expected type and birth depth.
type MetaVarContext struct {
	infos  map[kernel.MetaVarId]*MetaVarInfo
	nextID uint32
}

// NewMetaVarContext returns an empty metavariable context.
func NewMetaVarContext() *MetaVarContext {
	return &MetaVarContext{infos: make(map[kernel.MetaVarId]*MetaVarInfo)}
}

// Fresh mints a new, unassigned metavariable expected to have type ty
// in a context of the given depth.
func (m *MetaVarContext) Fresh(ty kernel.TermId, depth uint32) kernel.MetaVarId {
	id := kernel.MetaVarId(m.nextID)
	m.nextID++
	m.infos[id] = &MetaVarInfo{ID: id, Ty: ty, Depth: depth}
	return id
}

// Assign records term as mv's solution. It fails if mv is unknown or
// already assigned.
func (m *MetaVarContext) Assign(mv kernel.MetaVarId, term kernel.TermId) error {
	info, ok := m.infos[mv]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMetavar, mv)
	}
	if info.Assignment != nil {
		return fmt.Errorf("%w: %d", ErrMetavarAlreadyAssigned, mv)
	}
	t := term
	info.Assignment = &t
	return nil
}

// Lookup returns the bookkeeping record for mv, if any.
func (m *MetaVarContext) Lookup(mv kernel.MetaVarId) (*MetaVarInfo, bool) {
	info, ok := m.infos[mv]
	return info, ok
}

// IsAssigned reports whether mv currently has a solution.
func (m *MetaVarContext) IsAssigned(mv kernel.MetaVarId) bool {
	info, ok := m.infos[mv]
	return ok && info.Assignment != nil
}

// GetAssignment returns mv's solution, if assigned.
func (m *MetaVarContext) GetAssignment(mv kernel.MetaVarId) (kernel.TermId, bool) {
	info, ok := m.infos[mv]
	if !ok || info.Assignment == nil {
		return 0, false
	}
	return *info.Assignment, true
}

// Unsolved returns every metavariable minted by this context that
// still has no assignment, in minting order.
func (m *MetaVarContext) Unsolved() []kernel.MetaVarId {
	var out []kernel.MetaVarId
	for i := uint32(0); i < m.nextID; i++ {
		id := kernel.MetaVarId(i)
		if info, ok := m.infos[id]; ok && info.Assignment == nil {
			out = append(out, id)
		}
	}
	return out
}

// AllSolved reports whether every minted metavariable has an
// assignment, i.e. elaboration left no unresolved holes.
func (m *MetaVarContext) AllSolved() bool {
	return len(m.Unsolved()) == 0
}
