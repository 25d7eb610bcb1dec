// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestKernel() (*TermArena, *LevelArena, *SymbolTable, *Environment, *Converter) {
	arena := NewTermArena()
	levels := NewLevelArena()
	syms := NewSymbolTable()
	env := NewEnvironment()
	conv := NewConverter(arena, levels, env)
	return arena, levels, syms, env, conv
}

func TestWhnfBetaReduction(t *testing.T) {
	arena, levels, syms, _, conv := newTestKernel()
	ctx := NewContext()

	x := syms.Intern("x")
	sort0 := arena.MkSort(levels.Zero())
	id := arena.MkLam(Binder{Name: x, Ty: sort0}, arena.MkVar(0))
	arg := arena.MkVar(42) // stands for some free variable in an outer scope

	applied := arena.MkApp(id, arg)
	result, err := conv.Whnf(ctx, applied)
	require.NoError(t, err)
	require.Equal(t, arg, result)
}

func TestSubstituteShiftsFreeVariables(t *testing.T) {
	arena, levels, syms, _, conv := newTestKernel()

	x := syms.Intern("x")
	sort0 := arena.MkSort(levels.Zero())
	// \x. Var(1)  -- Var(1) is free relative to the lambda's own binder
	body := arena.MkVar(1)
	lam := arena.MkLam(Binder{Name: x, Ty: sort0}, body)

	// Substituting Var(0) (the lambda itself, from an enclosing
	// position) for a replacement that mentions Var(0) of the OUTER
	// scope must shift that replacement by one when it crosses the
	// lambda's binder.
	replacement := arena.MkVar(0)
	result := arena.MkApp(lam, replacement) // just to exercise via whnf path below

	_ = result
	// Directly check the substitution primitive: substituting inside
	// the lambda body (depth 1) must shift Var(0) -> Var(1).
	subst := arena.MkLam(Binder{Name: x, Ty: sort0}, arena.MkVar(1))
	_ = subst

	// Use Whnf on (\y. \x. y) applied to Var(0) to force substitution
	// under one binder and confirm the free variable is shifted.
	y := syms.Intern("y")
	inner := arena.MkLam(Binder{Name: x, Ty: sort0}, arena.MkVar(1)) // \x. y  (y = Var(1) here)
	outer := arena.MkLam(Binder{Name: y, Ty: sort0}, inner)          // \y. \x. y

	ctx := NewContext()
	appliedOnce, err := conv.Whnf(ctx, arena.MkApp(outer, arena.MkVar(0)))
	require.NoError(t, err)
	// Result should be \x. Var(1): the outer Var(0) (now substituted
	// in place of y) must be shifted to Var(1) once it crosses the
	// remaining \x binder.
	k := arena.Kind(appliedOnce)
	require.Equal(t, TagLam, k.Tag)
	bodyK := arena.Kind(k.Body)
	require.Equal(t, TagVar, bodyK.Tag)
	require.EqualValues(t, 1, bodyK.Var)
}

func TestConstUnfoldingInstantiatesUniverseParams(t *testing.T) {
	arena, levels, syms, env, conv := newTestKernel()
	ctx := NewContext()

	name := syms.Intern("idSort")
	// def idSort.{u} : Sort (u+1) := Sort u
	body := arena.MkSort(levels.Param(0))
	ty := arena.MkSort(levels.Succ(levels.Param(0)))
	require.NoError(t, env.AddDecl(Declaration{
		Name:       name,
		UnivParams: []string{"u"},
		Ty:         ty,
		Value:      &body,
		Kind:       DeclDef,
		Reducible:  true,
	}))

	c := arena.MkConst(name, []LevelId{levels.Const(3)})
	result, err := conv.Whnf(ctx, c)
	require.NoError(t, err)
	require.Equal(t, arena.MkSort(levels.Const(3)), result, "unfolding must substitute the passed universe argument")
}

func TestIsDefEqReflexiveAndViaBeta(t *testing.T) {
	arena, levels, syms, _, conv := newTestKernel()
	ctx := NewContext()

	x := syms.Intern("x")
	sort0 := arena.MkSort(levels.Zero())
	lamId := arena.MkLam(Binder{Name: x, Ty: sort0}, arena.MkVar(0))
	arg := arena.MkVar(7)

	lhs := arena.MkApp(lamId, arg)
	eq, err := conv.IsDefEq(ctx, lhs, arg)
	require.NoError(t, err)
	require.True(t, eq)

	eqSelf, err := conv.IsDefEq(ctx, arg, arg)
	require.NoError(t, err)
	require.True(t, eqSelf)
}

func TestIotaReductionOnConstructor(t *testing.T) {
	arena, levels, syms, env, conv := newTestKernel()
	ctx := NewContext()

	natName := syms.Intern("Nat")
	zeroName := syms.Intern("Nat.zero")
	succName := syms.Intern("Nat.succ")
	recName := syms.Intern("Nat.rec")
	sort0 := arena.MkSort(levels.Zero())
	natTy := arena.MkConst(natName, nil)

	require.NoError(t, env.AddInductive(
		Declaration{Name: natName, Ty: sort0, Kind: DeclInductive},
		[]Declaration{
			{Name: zeroName, Ty: natTy, Kind: DeclConstructor},
			{Name: succName, Ty: natTy, Kind: DeclConstructor, RecursiveArg: []bool{true}},
		},
	))
	require.NoError(t, env.AddDecl(Declaration{Name: recName, Ty: natTy, Kind: DeclRecursor, Parent: natName}))

	zero := arena.MkConst(zeroName, nil)
	one := arena.MkApp(arena.MkConst(succName, nil), zero)

	minorZero := arena.MkVar(100) // stands for the zero-case result
	// minorSucc : Nat -> Nat -> Nat, ignores both arguments and
	// returns a sentinel so the test can check which branch fired. The
	// sentinel is a free variable written under minorSucc's two
	// binders, where it reads Var(202); the two beta-reductions lower
	// it to Var(200).
	sentinel := arena.MkVar(200)
	minorSucc := arena.MkLam(Binder{Name: syms.Intern("n"), Ty: natTy},
		arena.MkLam(Binder{Name: syms.Intern("ih"), Ty: natTy}, arena.MkVar(202)))

	rec := arena.MkConst(recName, nil)
	call := arena.MkAppSpine(rec, minorZero, minorSucc, one)

	result, err := conv.Whnf(ctx, call)
	require.NoError(t, err)
	require.Equal(t, sentinel, result, "Nat.rec applied to (succ zero) must fire the succ minor premise")
}
