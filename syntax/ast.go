// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package syntax

// Ident is a source identifier together with its span.
type Ident struct {
	Span Span
	Name string
}

// Param is a function/binder parameter: one or more names sharing a
// type, explicit or implicit.
type Param struct {
	Span     Span
	Names    []Ident
	Type     Expr // nil if elided
	Implicit bool
}

// Decl is a top-level declaration.
type Decl interface {
	declNode()
	Span() Span
}

// DefDecl is a function or constant definition.
type DefDecl struct {
	SpanVal        Span
	Name           Ident
	UniverseParams []Ident
	Params         []Param
	ReturnType     Expr // nil if elided
	Body           Expr
}

func (d *DefDecl) declNode()    {}
func (d *DefDecl) Span() Span   { return d.SpanVal }

// TheoremDecl is a theorem: like DefDecl but the body is called Proof.
type TheoremDecl struct {
	SpanVal        Span
	Name           Ident
	UniverseParams []Ident
	Params         []Param
	Type           Expr
	Proof          Expr
}

func (d *TheoremDecl) declNode()  {}
func (d *TheoremDecl) Span() Span { return d.SpanVal }

// AxiomDecl postulates a constant with no body.
type AxiomDecl struct {
	SpanVal        Span
	Name           Ident
	UniverseParams []Ident
	Params         []Param
	Type           Expr
}

func (d *AxiomDecl) declNode()  {}
func (d *AxiomDecl) Span() Span { return d.SpanVal }

// Constructor is one constructor of an InductiveDecl.
type Constructor struct {
	SpanVal Span
	Name    Ident
	Params  []Param
	Type    Expr // nil if elided (defaults to the inductive applied to its params)
}

// InductiveDecl declares an inductive type and its constructors.
type InductiveDecl struct {
	SpanVal        Span
	Name           Ident
	UniverseParams []Ident
	Params         []Param
	Type           Expr // nil if elided (defaults to Sort _)
	Constructors   []Constructor
}

func (d *InductiveDecl) declNode()  {}
func (d *InductiveDecl) Span() Span { return d.SpanVal }

// Field is one field of a StructureDecl.
type Field struct {
	Span Span
	Name Ident
	Type Expr
}

// StructureDecl declares a (single-constructor) structure type.
type StructureDecl struct {
	SpanVal        Span
	Name           Ident
	UniverseParams []Ident
	Params         []Param
	Extends        []Expr
	Fields         []Field
}

func (d *StructureDecl) declNode()  {}
func (d *StructureDecl) Span() Span { return d.SpanVal }

// LitKind discriminates surface literal kinds.
type LitKind uint8

const (
	LitNat LitKind = iota
	LitString
)

// Lit is a surface literal value.
type Lit struct {
	Kind LitKind
	Nat  uint64
	Str  string
}

// UniverseKind discriminates surface universe annotations.
type UniverseKind uint8

const (
	UniverseType UniverseKind = iota
	UniverseTypeLevel
	UniverseProp
	UniverseSort
)

// Universe is a surface universe expression: Type, Type n, Prop, or
// Sort u.
type Universe struct {
	Kind  UniverseKind
	Level uint32 // UniverseTypeLevel
	Var   string // UniverseSort
}

// Expr is a surface expression.
type Expr interface {
	exprNode()
	Span() Span
}

// IdentExpr references a bound or global name.
type IdentExpr struct {
	Ident Ident
}

func (e *IdentExpr) exprNode()   {}
func (e *IdentExpr) Span() Span  { return e.Ident.Span }

// LitExpr is a literal expression.
type LitExpr struct {
	SpanVal Span
	Lit     Lit
}

func (e *LitExpr) exprNode()   {}
func (e *LitExpr) Span() Span  { return e.SpanVal }

// AppExpr is function application: func arg0 arg1 ...
type AppExpr struct {
	SpanVal Span
	Func    Expr
	Args    []Expr
}

func (e *AppExpr) exprNode()   {}
func (e *AppExpr) Span() Span  { return e.SpanVal }

// LamExpr is a lambda abstraction: fun params => body.
type LamExpr struct {
	SpanVal Span
	Params  []Param
	Body    Expr
}

func (e *LamExpr) exprNode()   {}
func (e *LamExpr) Span() Span  { return e.SpanVal }

// ForallExpr is a dependent product: forall params, body.
type ForallExpr struct {
	SpanVal Span
	Params  []Param
	Body    Expr
}

func (e *ForallExpr) exprNode()   {}
func (e *ForallExpr) Span() Span  { return e.SpanVal }

// ArrowExpr is a non-dependent function type: from -> to.
type ArrowExpr struct {
	SpanVal  Span
	From, To Expr
}

func (e *ArrowExpr) exprNode()   {}
func (e *ArrowExpr) Span() Span  { return e.SpanVal }

// LetExpr is a local let-binding: let name := value in body.
type LetExpr struct {
	SpanVal Span
	Name    Ident
	Type    Expr // nil if elided
	Value   Expr
	Body    Expr
}

func (e *LetExpr) exprNode()   {}
func (e *LetExpr) Span() Span  { return e.SpanVal }

// PatternKind discriminates the variants of Pattern.
type PatternKind uint8

const (
	PatternVar PatternKind = iota
	PatternConstructor
	PatternWildcard
	PatternLit
)

// Pattern is one pattern in a MatchArm.
type Pattern struct {
	Kind PatternKind
	Span Span
	Name Ident     // PatternVar, PatternConstructor
	Args []Pattern // PatternConstructor
	Lit  Lit       // PatternLit
}

// MatchArm is one `| pattern => body` arm of a MatchExpr.
type MatchArm struct {
	Span    Span
	Pattern Pattern
	Body    Expr
}

// MatchExpr is a pattern match over a scrutinee.
type MatchExpr struct {
	SpanVal   Span
	Scrutinee Expr
	Arms      []MatchArm
}

func (e *MatchExpr) exprNode()   {}
func (e *MatchExpr) Span() Span  { return e.SpanVal }

// IfExpr is a conditional: if cond then a else b.
type IfExpr struct {
	SpanVal                Span
	Cond, Then, Else Expr
}

func (e *IfExpr) exprNode()   {}
func (e *IfExpr) Span() Span  { return e.SpanVal }

// AnnExpr is a type-annotated expression: (expr : type).
type AnnExpr struct {
	SpanVal Span
	Expr    Expr
	Type    Expr
}

func (e *AnnExpr) exprNode()   {}
func (e *AnnExpr) Span() Span  { return e.SpanVal }

// HoleExpr is an elaboration placeholder: _.
type HoleExpr struct {
	SpanVal Span
}

func (e *HoleExpr) exprNode()   {}
func (e *HoleExpr) Span() Span  { return e.SpanVal }

// UniverseExpr is a surface universe annotation.
type UniverseExpr struct {
	SpanVal Span
	Kind    Universe
}

func (e *UniverseExpr) exprNode()   {}
func (e *UniverseExpr) Span() Span  { return e.SpanVal }

// ParenExpr is a parenthesized expression, kept distinct from its
// inner expression only to preserve accurate span reporting.
type ParenExpr struct {
	SpanVal Span
	Inner   Expr
}

func (e *ParenExpr) exprNode()   {}
func (e *ParenExpr) Span() Span  { return e.SpanVal }
