// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvironmentAddAndGetDecl(t *testing.T) {
	env := NewEnvironment()
	syms := NewSymbolTable()
	arena := NewTermArena()
	levels := NewLevelArena()

	name := syms.Intern("id")
	ty := arena.MkSort(levels.Zero())
	require.NoError(t, env.AddDecl(Declaration{Name: name, Ty: ty, Kind: DeclAxiom}))

	decl, ok := env.GetDecl(name)
	require.True(t, ok)
	require.Equal(t, ty, decl.Ty)
	require.False(t, decl.IsReducible(), "axioms have no value and are never reducible")
}

func TestEnvironmentRejectsRedeclaration(t *testing.T) {
	env := NewEnvironment()
	syms := NewSymbolTable()
	arena := NewTermArena()
	levels := NewLevelArena()

	name := syms.Intern("x")
	ty := arena.MkSort(levels.Zero())
	require.NoError(t, env.AddDecl(Declaration{Name: name, Ty: ty, Kind: DeclAxiom}))

	err := env.AddDecl(Declaration{Name: name, Ty: ty, Kind: DeclAxiom})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrAlreadyDeclared))
}

func TestEnvironmentInductiveRoundTrip(t *testing.T) {
	env := NewEnvironment()
	syms := NewSymbolTable()
	arena := NewTermArena()
	levels := NewLevelArena()

	natName := syms.Intern("Nat")
	zeroName := syms.Intern("Nat.zero")
	succName := syms.Intern("Nat.succ")
	sortZero := arena.MkSort(levels.Zero())

	ind := Declaration{Name: natName, Ty: sortZero, Kind: DeclInductive}
	zero := Declaration{Name: zeroName, Ty: arena.MkConst(natName, nil), Kind: DeclConstructor}
	succ := Declaration{
		Name:         succName,
		Ty:           arena.MkConst(natName, nil),
		Kind:         DeclConstructor,
		RecursiveArg: []bool{true},
	}

	require.NoError(t, env.AddInductive(ind, []Declaration{zero, succ}))

	gotInd, ctors, ok := env.GetInductive(natName)
	require.True(t, ok)
	require.Equal(t, natName, gotInd.Name)
	require.Len(t, ctors, 2)
	require.Equal(t, zeroName, ctors[0].Name)
	require.Equal(t, succName, ctors[1].Name)
	require.Equal(t, 1, ctors[1].MinorPremise)

	parent, ok := env.ParentOf(succName)
	require.True(t, ok)
	require.Equal(t, natName, parent)
}

func TestEnvironmentForkIsIndependent(t *testing.T) {
	env := NewEnvironment()
	syms := NewSymbolTable()
	arena := NewTermArena()
	levels := NewLevelArena()

	name := syms.Intern("a")
	ty := arena.MkSort(levels.Zero())
	require.NoError(t, env.AddDecl(Declaration{Name: name, Ty: ty, Kind: DeclAxiom}))

	fork := env.Fork()
	other := syms.Intern("b")
	require.NoError(t, fork.AddDecl(Declaration{Name: other, Ty: ty, Kind: DeclAxiom}))

	require.True(t, fork.HasDecl(name))
	require.True(t, fork.HasDecl(other))
	require.False(t, env.HasDecl(other), "adding to the fork must not affect the original")
}
