// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "fmt"

// DeclKind discriminates the kind of a global declaration.
type DeclKind uint8

const (
	DeclDef DeclKind = iota
	DeclAxiom
	DeclTheorem
	DeclInductive
	DeclConstructor
	DeclRecursor
)

// Declaration is a global entry in the Environment.
// Invariant: Axioms have Value == nil; Theorems have Value != nil but
// Reducible == false (they are opaque to WHNF unfolding, like the
// source's Attributes::opaque()).
type Declaration struct {
	Name         SymbolId
	UnivParams   []string // display names only; arity is len(UnivParams)
	Ty           TermId
	Value        *TermId
	Kind         DeclKind
	Reducible    bool

	// Inductive-only metadata.
	Constructors []SymbolId // for DeclInductive: its constructors, in declaration order
	Parent       SymbolId   // for DeclConstructor/DeclRecursor: owning inductive
	NumParams    int        // for DeclInductive: number of (non-index) parameters
	MinorPremise int        // for DeclConstructor: index into the owning recursor's minor premises
	RecursiveArg []bool     // for DeclConstructor: which of its own fields are recursive occurrences of Parent
}

// IsReducible reports whether a Const naming this declaration may be
// unfolded during WHNF: reducible and has a body.
func (d *Declaration) IsReducible() bool {
	return d.Reducible && d.Value != nil
}

// Environment maps SymbolId to Declaration, plus the inductive <->
// constructor index.
type Environment struct {
	decls            map[SymbolId]*Declaration
	inductiveCtors   map[SymbolId][]SymbolId // inductive -> constructors
	ctorParent       map[SymbolId]SymbolId   // constructor -> inductive
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		decls:          make(map[SymbolId]*Declaration),
		inductiveCtors: make(map[SymbolId][]SymbolId),
		ctorParent:     make(map[SymbolId]SymbolId),
	}
}

// AddDecl adds decl to the environment. It fails if the name is
// already bound.
func (e *Environment) AddDecl(decl Declaration) error {
	if _, exists := e.decls[decl.Name]; exists {
		return fmt.Errorf("%w: symbol %d", ErrAlreadyDeclared, decl.Name)
	}
	d := decl
	e.decls[decl.Name] = &d
	if d.Kind == DeclConstructor {
		e.ctorParent[d.Name] = d.Parent
		e.inductiveCtors[d.Parent] = append(e.inductiveCtors[d.Parent], d.Name)
	}
	return nil
}

// GetDecl returns the declaration bound to name, if any.
func (e *Environment) GetDecl(name SymbolId) (*Declaration, bool) {
	d, ok := e.decls[name]
	return d, ok
}

// HasDecl reports whether name is bound.
func (e *Environment) HasDecl(name SymbolId) bool {
	_, ok := e.decls[name]
	return ok
}

// AddInductive registers an inductive declaration plus its
// constructors, side-populating the constructor -> parent index.
func (e *Environment) AddInductive(ind Declaration, ctors []Declaration) error {
	if err := e.AddDecl(ind); err != nil {
		return err
	}
	return e.AddConstructors(ind.Name, ctors)
}

// AddConstructors registers ctors against an already-declared
// inductive named indName, for callers (the elaborator) that must
// declare the inductive itself first so self-referential constructor
// field types (e.g. Nat.succ : Nat -> Nat) can resolve the inductive's
// own name while its constructors are still being built.
func (e *Environment) AddConstructors(indName SymbolId, ctors []Declaration) error {
	ind, ok := e.decls[indName]
	if !ok || ind.Kind != DeclInductive {
		return fmt.Errorf("%w: %d is not a declared inductive", ErrNotFound, indName)
	}
	names := make([]SymbolId, 0, len(ctors))
	for i, c := range ctors {
		c.Parent = indName
		c.MinorPremise = i
		if err := e.AddDecl(c); err != nil {
			return err
		}
		names = append(names, c.Name)
	}
	ind.Constructors = names
	return nil
}

// GetInductive returns an inductive's declaration and its
// constructors' declarations, in order.
func (e *Environment) GetInductive(name SymbolId) (*Declaration, []*Declaration, bool) {
	ind, ok := e.decls[name]
	if !ok || ind.Kind != DeclInductive {
		return nil, nil, false
	}
	ctors := make([]*Declaration, 0, len(ind.Constructors))
	for _, c := range ind.Constructors {
		ctors = append(ctors, e.decls[c])
	}
	return ind, ctors, true
}

// ParentOf returns the inductive owning a constructor.
func (e *Environment) ParentOf(ctor SymbolId) (SymbolId, bool) {
	p, ok := e.ctorParent[ctor]
	return p, ok
}

// Fork returns a copy-on-write snapshot of the environment: the
// returned Environment shares no mutable state with e, so further
// AddDecl calls on either do not affect the other.
func (e *Environment) Fork() *Environment {
	f := NewEnvironment()
	for k, v := range e.decls {
		d := *v
		f.decls[k] = &d
	}
	for k, v := range e.inductiveCtors {
		cp := make([]SymbolId, len(v))
		copy(cp, v)
		f.inductiveCtors[k] = cp
	}
	for k, v := range e.ctorParent {
		f.ctorParent[k] = v
	}
	return f
}
