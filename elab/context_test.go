// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package elab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leanr-go/leanr/kernel"
)

func TestContextPushLookupPop(t *testing.T) {
	ctx := NewContext()
	syms := kernel.NewSymbolTable()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())

	x := syms.Intern("x")
	level := ctx.Push("x", x, ty)
	require.Equal(t, uint32(0), level)
	require.Equal(t, uint32(1), ctx.Depth())

	b, ok := ctx.Lookup("x")
	require.True(t, ok)
	require.Equal(t, ty, b.Ty)
	require.Equal(t, uint32(0), ctx.LevelToIndex(b.Level))

	ctx.Pop("x")
	require.Equal(t, uint32(0), ctx.Depth())
	_, ok = ctx.Lookup("x")
	require.False(t, ok)
}

func TestContextShadowing(t *testing.T) {
	ctx := NewContext()
	syms := kernel.NewSymbolTable()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())

	x1 := syms.Intern("x1")
	x2 := syms.Intern("x2")
	ctx.Push("x", x1, ty)
	ctx.Push("x", x2, ty)

	b, ok := ctx.Lookup("x")
	require.True(t, ok)
	require.Equal(t, x2, b.Sym)

	ctx.Pop("x")
	b, ok = ctx.Lookup("x")
	require.True(t, ok)
	require.Equal(t, x1, b.Sym)
}

func TestContextLevelToIndexAsDepthGrows(t *testing.T) {
	ctx := NewContext()
	syms := kernel.NewSymbolTable()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())

	outer := syms.Intern("outer")
	level := ctx.Push("outer", outer, ty)
	require.Equal(t, uint32(0), ctx.LevelToIndex(level))

	inner := syms.Intern("inner")
	ctx.Push("inner", inner, ty)
	// outer is now one level further from the top, so its index grows.
	require.Equal(t, uint32(1), ctx.LevelToIndex(level))
}

func TestFrameCloseUndoesEveryPush(t *testing.T) {
	ctx := NewContext()
	syms := kernel.NewSymbolTable()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())

	frame := ctx.OpenFrame()
	frame.Push("a", syms.Intern("a"), ty)
	frame.Push("b", syms.Intern("b"), ty)
	require.Equal(t, uint32(2), ctx.Depth())

	frame.Close()
	require.Equal(t, uint32(0), ctx.Depth())
	_, ok := ctx.Lookup("a")
	require.False(t, ok)
	_, ok = ctx.Lookup("b")
	require.False(t, ok)
}

func TestFramePushLetRestoresShadowedOuterBinding(t *testing.T) {
	ctx := NewContext()
	syms := kernel.NewSymbolTable()
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	ty := arena.MkSort(levels.Zero())
	outerSym := syms.Intern("n_outer")
	ctx.Push("n", outerSym, ty)

	frame := ctx.OpenFrame()
	innerSym := syms.Intern("n_inner")
	frame.PushLet("n", innerSym, ty, arena.MkNat(0))
	b, ok := ctx.Lookup("n")
	require.True(t, ok)
	require.Equal(t, innerSym, b.Sym)

	frame.Close()
	b, ok = ctx.Lookup("n")
	require.True(t, ok)
	require.Equal(t, outerSym, b.Sym)
}
