// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestChecker() (*TermArena, *LevelArena, *SymbolTable, *Environment, *TypeChecker) {
	arena, levels, syms, env, conv := newTestKernel()
	tc := NewTypeChecker(arena, levels, syms, env, conv)
	return arena, levels, syms, env, tc
}

func TestInferSort(t *testing.T) {
	arena, levels, _, _, tc := newTestChecker()
	ctx := NewContext()

	ty, err := tc.Infer(ctx, arena.MkSort(levels.Zero()))
	require.NoError(t, err)
	require.Equal(t, arena.MkSort(levels.Succ(levels.Zero())), ty)
}

func TestInferIdentityLambda(t *testing.T) {
	arena, levels, syms, _, tc := newTestChecker()
	ctx := NewContext()

	x := syms.Intern("x")
	sort0 := arena.MkSort(levels.Zero())
	id := arena.MkLam(Binder{Name: x, Ty: sort0}, arena.MkVar(0))

	ty, err := tc.Infer(ctx, id)
	require.NoError(t, err)

	k := arena.Kind(ty)
	require.Equal(t, TagPi, k.Tag)
	require.Equal(t, sort0, k.Binder.Ty)
}

func TestCheckIdentityAgainstPi(t *testing.T) {
	arena, levels, syms, _, tc := newTestChecker()
	ctx := NewContext()

	x := syms.Intern("x")
	sort0 := arena.MkSort(levels.Zero())
	id := arena.MkLam(Binder{Name: x, Ty: sort0}, arena.MkVar(0))
	piTy := arena.MkPi(Binder{Name: x, Ty: sort0}, sort0)

	require.NoError(t, tc.Check(ctx, id, piTy))
}

func TestInferDependentIdentity(t *testing.T) {
	arena, levels, syms, _, tc := newTestChecker()
	ctx := NewContext()

	a := syms.Intern("A")
	x := syms.Intern("x")
	sort0 := arena.MkSort(levels.Zero())
	// fun (A : Sort 0) (x : A) => x, with A's occurrence in x's binder
	// type and in the body both referring back across the other bound
	// variable, exactly as `def id (A : Type) (x : A) : A := x` compiles
	// to.
	id := arena.MkLam(Binder{Name: a, Ty: sort0},
		arena.MkLam(Binder{Name: x, Ty: arena.MkVar(0)}, arena.MkVar(0)))

	ty, err := tc.Infer(ctx, id)
	require.NoError(t, err)

	outer := arena.Kind(ty)
	require.Equal(t, TagPi, outer.Tag)
	require.Equal(t, sort0, outer.Binder.Ty)

	inner := arena.Kind(outer.Body)
	require.Equal(t, TagPi, inner.Tag)
	innerDom := arena.Kind(inner.Binder.Ty)
	require.Equal(t, TagVar, innerDom.Tag)
	require.Equal(t, uint32(0), innerDom.Var)

	result := arena.Kind(inner.Body)
	require.Equal(t, TagVar, result.Tag)
	require.Equal(t, uint32(1), result.Var)
}

func TestCheckRejectsMismatchedType(t *testing.T) {
	arena, levels, syms, _, tc := newTestChecker()
	ctx := NewContext()

	x := syms.Intern("x")
	sort0 := arena.MkSort(levels.Zero())
	sort1 := arena.MkSort(levels.Succ(levels.Zero()))
	id := arena.MkLam(Binder{Name: x, Ty: sort0}, arena.MkVar(0))
	wrongPi := arena.MkPi(Binder{Name: x, Ty: sort1}, arena.MkVar(0))

	err := tc.Check(ctx, id, wrongPi)
	require.Error(t, err)
}

func TestInferLiteralsUseBuiltinTypes(t *testing.T) {
	arena, _, _, _, tc := newTestChecker()
	ctx := NewContext()
	tc.EnsureBuiltins()

	natTy, err := tc.Infer(ctx, arena.MkNat(5))
	require.NoError(t, err)
	require.Equal(t, tc.natTy, natTy)

	strTy, err := tc.Infer(ctx, arena.MkString("hi"))
	require.NoError(t, err)
	require.Equal(t, tc.stringTy, strTy)
	require.NotEqual(t, natTy, strTy)
}

func TestInferRejectsMetavariable(t *testing.T) {
	arena, _, _, _, tc := newTestChecker()
	ctx := NewContext()

	_, err := tc.Infer(ctx, arena.MkMVar(0))
	require.ErrorIs(t, err, ErrMetavarInKernelTerm)
}
