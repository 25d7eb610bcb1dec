// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package elab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leanr-go/leanr/kernel"
	"github.com/leanr-go/leanr/syntax"
)

func newTestElaborator() (*Elaborator, *kernel.TermArena, *kernel.LevelArena, *kernel.SymbolTable, *kernel.Environment) {
	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	syms := kernel.NewSymbolTable()
	env := kernel.NewEnvironment()
	conv := kernel.NewConverter(arena, levels, env)
	tc := kernel.NewTypeChecker(arena, levels, syms, env, conv)
	e := NewElaborator(arena, levels, syms, env, conv, tc)
	return e, arena, levels, syms, env
}

func parseDecls(t *testing.T, src string) []syntax.Decl {
	t.Helper()
	source := syntax.NewSourceFile(0, "test.leanr", src)
	tokens := syntax.NewLexer(source).Tokenize()
	decls, err := syntax.NewParser(tokens).ParseDecls()
	require.NoError(t, err)
	return decls
}

func TestElaborateSimpleDef(t *testing.T) {
	e, arena, levels, syms, env := newTestElaborator()
	decls := parseDecls(t, "def id (x : Nat) : Nat := x")
	require.NoError(t, e.ElaborateDecls(decls))

	sym := syms.Intern("id")
	decl, ok := env.GetDecl(sym)
	require.True(t, ok)
	require.Equal(t, kernel.DeclDef, decl.Kind)

	k := arena.Kind(decl.Ty)
	require.Equal(t, kernel.TagPi, k.Tag)
	natSym := syms.Intern(kernel.BuiltinNatName)
	domK := arena.Kind(k.Binder.Ty)
	require.Equal(t, kernel.TagConst, domK.Tag)
	require.Equal(t, natSym, domK.ConstName)
	_ = levels
}

func TestElaborateIdentityLambdaInfersParamType(t *testing.T) {
	e, arena, _, syms, env := newTestElaborator()
	decls := parseDecls(t, "def idNat (x : Nat) : Nat := x")
	require.NoError(t, e.ElaborateDecls(decls))

	decl, ok := env.GetDecl(syms.Intern("idNat"))
	require.True(t, ok)
	body := arena.Kind(*decl.Value)
	require.Equal(t, kernel.TagLam, body.Tag)
	require.Equal(t, kernel.TagVar, arena.Kind(body.Body).Tag)
}

func TestElaborateDependentIdentity(t *testing.T) {
	e, arena, _, syms, env := newTestElaborator()
	decls := parseDecls(t, "def id (A : Type) (x : A) : A := x")
	require.NoError(t, e.ElaborateDecls(decls))

	decl, ok := env.GetDecl(syms.Intern("id"))
	require.True(t, ok)

	// infer of the compiled term is Pi(A : Type, Pi(x : Var 0, Var 1)):
	// the outer binder's domain is a sort, the inner binder's domain
	// refers back to the outer binder, and the result type refers back
	// past the inner binder to the outer one.
	outer := arena.Kind(decl.Ty)
	require.Equal(t, kernel.TagPi, outer.Tag)
	require.Equal(t, kernel.TagSort, arena.Kind(outer.Binder.Ty).Tag)

	inner := arena.Kind(outer.Body)
	require.Equal(t, kernel.TagPi, inner.Tag)
	innerDom := arena.Kind(inner.Binder.Ty)
	require.Equal(t, kernel.TagVar, innerDom.Tag)
	require.Equal(t, uint32(0), innerDom.Var)

	result := arena.Kind(inner.Body)
	require.Equal(t, kernel.TagVar, result.Tag)
	require.Equal(t, uint32(1), result.Var)

	body := arena.Kind(*decl.Value)
	require.Equal(t, kernel.TagLam, body.Tag)
	innerLam := arena.Kind(body.Body)
	require.Equal(t, kernel.TagLam, innerLam.Tag)
	require.Equal(t, kernel.TagVar, arena.Kind(innerLam.Body).Tag)
}

func TestElaborateAxiomHasNoValue(t *testing.T) {
	e, _, _, syms, env := newTestElaborator()
	decls := parseDecls(t, "axiom choice : Nat")
	require.NoError(t, e.ElaborateDecls(decls))

	decl, ok := env.GetDecl(syms.Intern("choice"))
	require.True(t, ok)
	require.Equal(t, kernel.DeclAxiom, decl.Kind)
	require.Nil(t, decl.Value)
}

func TestElaborateTheoremIsOpaque(t *testing.T) {
	e, _, _, syms, env := newTestElaborator()
	decls := parseDecls(t, `
		def trivial : Nat := 0
		theorem trivialIsTrivial : Nat := trivial
	`)
	require.NoError(t, e.ElaborateDecls(decls))

	decl, ok := env.GetDecl(syms.Intern("trivialIsTrivial"))
	require.True(t, ok)
	require.Equal(t, kernel.DeclTheorem, decl.Kind)
	require.False(t, decl.Reducible)
}

func TestElaborateInductiveSelfReference(t *testing.T) {
	e, _, _, syms, env := newTestElaborator()
	decls := parseDecls(t, `
		inductive Nat2 where
		| zero2 : Nat2
		| succ2 (n : Nat2) : Nat2
	`)
	require.NoError(t, e.ElaborateDecls(decls))

	indSym := syms.Intern("Nat2")
	ind, ctors, ok := env.GetInductive(indSym)
	require.True(t, ok)
	require.Equal(t, kernel.DeclInductive, ind.Kind)
	require.Len(t, ctors, 2)
	require.Equal(t, "Nat2.zero2", nameOf(t, syms, ctors[0].Name))
	require.Equal(t, "Nat2.succ2", nameOf(t, syms, ctors[1].Name))
	require.Equal(t, []bool{true}, ctors[1].RecursiveArg)

	_, ok = env.GetDecl(syms.Intern("Nat2.rec"))
	require.True(t, ok)
}

func TestElaborateStructureGetsConstructorAndRecursor(t *testing.T) {
	e, _, _, syms, env := newTestElaborator()
	decls := parseDecls(t, `
		structure Pair where
			fst : Nat,
			snd : Nat
	`)
	require.NoError(t, e.ElaborateDecls(decls))

	_, ok := env.GetDecl(syms.Intern("Pair.mk"))
	require.True(t, ok)
	_, ok = env.GetDecl(syms.Intern("Pair.rec"))
	require.True(t, ok)
}

func TestElaborateMatchLowersToRecursor(t *testing.T) {
	e, _, _, syms, env := newTestElaborator()
	decls := parseDecls(t, `
		inductive Bit where
		| b0 : Bit
		| b1 : Bit

		def flip (b : Bit) : Bit := match b with
		| b0 => Bit.b1
		| b1 => Bit.b0
	`)
	require.NoError(t, e.ElaborateDecls(decls))

	decl, ok := env.GetDecl(syms.Intern("flip"))
	require.True(t, ok)
	require.NotNil(t, decl.Value)
}

func TestElaborateIfLowersToRecursor(t *testing.T) {
	e, _, _, syms, env := newTestElaborator()
	decls := parseDecls(t, `
		inductive Bit2 where
		| b0 : Bit2
		| b1 : Bit2

		def choose (b : Bit2) : Nat := if b then 1 else 0
	`)
	require.NoError(t, e.ElaborateDecls(decls))

	decl, ok := env.GetDecl(syms.Intern("choose"))
	require.True(t, ok)
	require.NotNil(t, decl.Value)
}

func TestElaborateMatchRejectsNonExhaustive(t *testing.T) {
	e, _, _, _, _ := newTestElaborator()
	decls := parseDecls(t, `
		inductive Bit3 where
		| b0 : Bit3
		| b1 : Bit3

		def bad (b : Bit3) : Bit3 := match b with
		| b0 => b0
	`)
	err := e.ElaborateDecls(decls)
	require.ErrorIs(t, err, ErrNonExhaustiveMatch)
}

func TestElaborateParameterizedInductiveRejected(t *testing.T) {
	e, _, _, _, _ := newTestElaborator()
	decls := parseDecls(t, `
		inductive Box (a : Nat) where
		| mk : Box
	`)
	err := e.ElaborateDecls(decls)
	require.ErrorIs(t, err, ErrParameterizedInductiveUnsupported)
}

func TestElaborateUnknownIdentifier(t *testing.T) {
	e, _, _, _, _ := newTestElaborator()
	decls := parseDecls(t, "def bad : Nat := doesNotExist")
	err := e.ElaborateDecls(decls)
	require.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestElaborateForallComputesSort(t *testing.T) {
	e, arena, _, syms, env := newTestElaborator()
	decls := parseDecls(t, "def arrowTy : Type := Nat -> Nat")
	require.NoError(t, e.ElaborateDecls(decls))

	decl, ok := env.GetDecl(syms.Intern("arrowTy"))
	require.True(t, ok)
	k := arena.Kind(*decl.Value)
	require.Equal(t, kernel.TagPi, k.Tag)
}

func nameOf(t *testing.T, syms *kernel.SymbolTable, id kernel.SymbolId) string {
	t.Helper()
	s, ok := syms.Resolve(id)
	require.True(t, ok)
	return s
}
