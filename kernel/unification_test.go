// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestUnifier() (*TermArena, *LevelArena, *SymbolTable, *Unifier) {
	arena, levels, syms, env, conv := newTestKernel()
	tc := NewTypeChecker(arena, levels, syms, env, conv)
	u := NewUnifier(arena, levels, conv, tc)
	return arena, levels, syms, u
}

func TestUnifyAssignsMetavariable(t *testing.T) {
	arena, _, _, u := newTestUnifier()
	ctx := NewContext()

	mv := arena.MkMVar(0)
	target := arena.MkVar(9)

	u.PushUnify(ctx, mv, target)
	require.NoError(t, u.Solve())

	resolved := u.Resolve(mv)
	require.Equal(t, target, resolved)
}

func TestUnifyStructuralDecomposition(t *testing.T) {
	arena, _, syms, u := newTestUnifier()
	ctx := NewContext()

	x := syms.Intern("x")
	mv := arena.MkMVar(0)
	fn := arena.MkVar(1)
	lhs := arena.MkApp(fn, mv)
	rhs := arena.MkApp(fn, arena.MkVar(5))
	_ = x

	u.PushUnify(ctx, lhs, rhs)
	require.NoError(t, u.Solve())
	require.Equal(t, arena.MkVar(5), u.Resolve(mv))
}

func TestOccursCheckRejectsCircularSolution(t *testing.T) {
	arena, _, _, u := newTestUnifier()
	ctx := NewContext()

	mv := arena.MkMVar(0)
	circular := arena.MkApp(arena.MkVar(1), arena.MkMVar(0))

	u.PushUnify(ctx, mv, circular)
	err := u.Solve()
	require.Error(t, err)
}

func TestSolveIdempotentOnEmptyQueue(t *testing.T) {
	_, _, _, u := newTestUnifier()
	require.NoError(t, u.Solve())
	require.NoError(t, u.Solve(), "solving an already-drained queue again must be a no-op")
}

func TestUnifyHeadMismatchFails(t *testing.T) {
	arena, levels, _, u := newTestUnifier()
	ctx := NewContext()

	u.PushUnify(ctx, arena.MkSort(levels.Zero()), arena.MkVar(0))
	require.Error(t, u.Solve())
}
