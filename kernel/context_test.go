// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextLookup(t *testing.T) {
	ctx := NewContext()
	arena := NewTermArena()
	syms := NewSymbolTable()

	tyA := arena.MkVar(100)
	tyB := arena.MkVar(200)
	ctx.PushVar(syms.Intern("a"), tyA)
	ctx.PushVar(syms.Intern("b"), tyB)

	inner, ok := ctx.Lookup(0)
	require.True(t, ok)
	require.Equal(t, tyB, inner.Ty)

	outer, ok := ctx.Lookup(1)
	require.True(t, ok)
	require.Equal(t, tyA, outer.Ty)

	_, ok = ctx.Lookup(2)
	require.False(t, ok)
}

func TestContextGuardRestoresOnClose(t *testing.T) {
	ctx := NewContext()
	syms := NewSymbolTable()
	arena := NewTermArena()
	ty := arena.MkVar(0)

	ctx.PushVar(syms.Intern("outer"), ty)
	require.Equal(t, 1, ctx.Len())

	func() {
		g := ctx.OpenGuard()
		defer g.Close()
		ctx.PushVar(syms.Intern("inner1"), ty)
		ctx.PushVar(syms.Intern("inner2"), ty)
		require.Equal(t, 3, ctx.Len())
	}()

	require.Equal(t, 1, ctx.Len(), "guard must pop everything pushed inside its scope")
}

func TestContextGuardCloseIdempotent(t *testing.T) {
	ctx := NewContext()
	syms := NewSymbolTable()
	arena := NewTermArena()
	ty := arena.MkVar(0)
	ctx.PushVar(syms.Intern("x"), ty)

	g := ctx.OpenGuard()
	g.Close()
	g.Close()
	require.Equal(t, 1, ctx.Len())
}
