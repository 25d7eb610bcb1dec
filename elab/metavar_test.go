// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package elab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leanr-go/leanr/kernel"
)

func TestMetaVarContextFreshAreDistinctAndUnsolved(t *testing.T) {
	mctx := NewMetaVarContext()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())

	m1 := mctx.Fresh(ty, 0)
	m2 := mctx.Fresh(ty, 0)
	require.NotEqual(t, m1, m2)
	require.False(t, mctx.AllSolved())
	require.ElementsMatch(t, []kernel.MetaVarId{m1, m2}, mctx.Unsolved())
}

func TestMetaVarContextAssignOnce(t *testing.T) {
	mctx := NewMetaVarContext()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())
	mv := mctx.Fresh(ty, 0)

	require.NoError(t, mctx.Assign(mv, arena.MkNat(3)))
	require.True(t, mctx.IsAssigned(mv))

	err := mctx.Assign(mv, arena.MkNat(4))
	require.ErrorIs(t, err, ErrMetavarAlreadyAssigned)

	val, ok := mctx.GetAssignment(mv)
	require.True(t, ok)
	require.Equal(t, arena.MkNat(3), val)
}

func TestMetaVarContextAssignUnknownFails(t *testing.T) {
	mctx := NewMetaVarContext()
	arena := kernel.NewTermArena()
	err := mctx.Assign(kernel.MetaVarId(99), arena.MkNat(0))
	require.ErrorIs(t, err, ErrUnknownMetavar)
}

func TestMetaVarContextAllSolvedOnceEveryHoleAssigned(t *testing.T) {
	mctx := NewMetaVarContext()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())

	m1 := mctx.Fresh(ty, 0)
	m2 := mctx.Fresh(ty, 1)
	require.NoError(t, mctx.Assign(m1, arena.MkNat(1)))
	require.False(t, mctx.AllSolved())

	require.NoError(t, mctx.Assign(m2, arena.MkNat(2)))
	require.True(t, mctx.AllSolved())
}
