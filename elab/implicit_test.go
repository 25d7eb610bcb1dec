// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package elab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leanr-go/leanr/kernel"
)

func newImplicitTestEnv() (*kernel.TermArena, *kernel.LevelArena, *kernel.SymbolTable, *kernel.Converter) {
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	syms := kernel.NewSymbolTable()
	env := kernel.NewEnvironment()
	conv := kernel.NewConverter(arena, levels, env)
	return arena, levels, syms, conv
}

func TestInsertLeadingSkipsDefaultBinders(t *testing.T) {
	arena, levels, syms, conv := newImplicitTestEnv()
	h := NewImplicitHandler(arena, conv)
	mctx := NewMetaVarContext()
	kctx := kernel.NewContext()

	sort0 := arena.MkSort(levels.Zero())
	x := syms.Intern("x")
	funcTy := arena.MkPi(kernel.Binder{Name: x, Ty: sort0, Info: kernel.Default}, sort0)

	args, reduced, err := h.InsertLeading(kctx, mctx, 0, funcTy)
	require.NoError(t, err)
	require.Empty(t, args)
	require.Equal(t, funcTy, reduced)
}

func TestInsertLeadingFillsLeadingImplicitBinders(t *testing.T) {
	arena, levels, syms, conv := newImplicitTestEnv()
	h := NewImplicitHandler(arena, conv)
	mctx := NewMetaVarContext()
	kctx := kernel.NewContext()

	sort0 := arena.MkSort(levels.Zero())
	a := syms.Intern("a")
	x := syms.Intern("x")
	// {a : Sort 0} -> (x : a) -> a
	inner := arena.MkPi(kernel.Binder{Name: x, Ty: arena.MkVar(0), Info: kernel.Default}, arena.MkVar(1))
	funcTy := arena.MkPi(kernel.Binder{Name: a, Ty: sort0, Info: kernel.Implicit}, inner)

	args, reduced, err := h.InsertLeading(kctx, mctx, 0, funcTy)
	require.NoError(t, err)
	require.Len(t, args, 1)
	require.Equal(t, kernel.TagMVar, arena.Kind(args[0]).Tag)

	k := arena.Kind(reduced)
	require.Equal(t, kernel.TagPi, k.Tag)
	require.Equal(t, kernel.Default, k.Binder.Info)
	// the remaining Pi's domain should now mention the minted metavariable
	// instead of the bound implicit parameter.
	require.Equal(t, args[0], k.Binder.Ty)
}

func TestInsertLeadingStopsAtFirstDefaultBinder(t *testing.T) {
	arena, levels, syms, conv := newImplicitTestEnv()
	h := NewImplicitHandler(arena, conv)
	mctx := NewMetaVarContext()
	kctx := kernel.NewContext()

	sort0 := arena.MkSort(levels.Zero())
	a := syms.Intern("a")
	b := syms.Intern("b")
	x := syms.Intern("x")
	// {a : Sort 0} -> (x : Sort 0) -> {b : Sort 0} -> Sort 0
	tail := arena.MkPi(kernel.Binder{Name: b, Ty: sort0, Info: kernel.Implicit}, sort0)
	mid := arena.MkPi(kernel.Binder{Name: x, Ty: sort0, Info: kernel.Default}, tail)
	funcTy := arena.MkPi(kernel.Binder{Name: a, Ty: sort0, Info: kernel.Implicit}, mid)

	args, reduced, err := h.InsertLeading(kctx, mctx, 0, funcTy)
	require.NoError(t, err)
	require.Len(t, args, 1)

	k := arena.Kind(reduced)
	require.Equal(t, kernel.TagPi, k.Tag)
	require.Equal(t, kernel.Default, k.Binder.Info)
}
