// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) []Decl {
	t.Helper()
	source := NewSourceFile(0, "test.leanr", input)
	tokens := NewLexer(source).Tokenize()
	decls, err := NewParser(tokens).ParseDecls()
	require.NoError(t, err)
	return decls
}

func TestParseSimpleDef(t *testing.T) {
	decls := parse(t, "def id (x : Nat) : Nat := x")
	require.Len(t, decls, 1)

	def, ok := decls[0].(*DefDecl)
	require.True(t, ok)
	require.Equal(t, "id", def.Name.Name)
	require.Len(t, def.Params, 1)
}

func TestParseLambda(t *testing.T) {
	decls := parse(t, "def test := fun x => x")
	require.Len(t, decls, 1)
	def := decls[0].(*DefDecl)
	lam, ok := def.Body.(*LamExpr)
	require.True(t, ok)
	require.Len(t, lam.Params, 1)
}

func TestParseInductive(t *testing.T) {
	decls := parse(t, `
		inductive Nat where
		| zero : Nat
		| succ (n : Nat) : Nat
	`)
	require.Len(t, decls, 1)

	ind, ok := decls[0].(*InductiveDecl)
	require.True(t, ok)
	require.Equal(t, "Nat", ind.Name.Name)
	require.Len(t, ind.Constructors, 2)
	require.Equal(t, "zero", ind.Constructors[0].Name.Name)
	require.Equal(t, "succ", ind.Constructors[1].Name.Name)
}

func TestParseArrowRightAssociative(t *testing.T) {
	decls := parse(t, "axiom f : Nat -> Nat -> Nat")
	ax := decls[0].(*AxiomDecl)
	outer, ok := ax.Type.(*ArrowExpr)
	require.True(t, ok)
	_, fromIsArrow := outer.From.(*ArrowExpr)
	require.False(t, fromIsArrow, "A -> B -> C must parse as A -> (B -> C)")
	_, toIsArrow := outer.To.(*ArrowExpr)
	require.True(t, toIsArrow)
}

func TestParseApplicationBindsTighterThanArrow(t *testing.T) {
	decls := parse(t, "axiom f : P x -> Q y")
	ax := decls[0].(*AxiomDecl)
	arrow := ax.Type.(*ArrowExpr)
	_, fromIsApp := arrow.From.(*AppExpr)
	require.True(t, fromIsApp)
}

func TestParseIfThenElse(t *testing.T) {
	decls := parse(t, "def choose := if true then one else two")
	def := decls[0].(*DefDecl)
	_, ok := def.Body.(*IfExpr)
	require.True(t, ok)
}

func TestParseTheoremAndAxiom(t *testing.T) {
	decls := parse(t, "theorem t : Nat := n\naxiom a : Nat")
	require.Len(t, decls, 2)
	_, ok1 := decls[0].(*TheoremDecl)
	require.True(t, ok1)
	_, ok2 := decls[1].(*AxiomDecl)
	require.True(t, ok2)
}

func TestParseMatchExpression(t *testing.T) {
	decls := parse(t, `
		def pred := fun n => match n with
		| zero => zero
		| succ m => m
	`)
	def := decls[0].(*DefDecl)
	lam := def.Body.(*LamExpr)
	m, ok := lam.Body.(*MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 2)
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	source := NewSourceFile(0, "test.leanr", ":= x")
	tokens := NewLexer(source).Tokenize()
	_, err := NewParser(tokens).ParseDecls()
	require.Error(t, err)
}
