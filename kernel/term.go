// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// TermId is an opaque identifier into the term arena. Because terms
// are hash-consed (property P1), TermId equality is equivalent to
// structural equality of the denoted TermKind.
type TermId uint32

// MetaVarId identifies an elaboration hole.
type MetaVarId uint32

// BinderInfo distinguishes how an argument is passed.
type BinderInfo uint8

const (
	Default BinderInfo = iota
	Implicit
	StrictImplicit
	InstanceImplicit
)

// Binder describes a bound variable: its display name, its type, and
// how arguments for it are passed.
type Binder struct {
	Name SymbolId
	Ty   TermId
	Info BinderInfo
}

// LitKind discriminates kernel literal values.
type LitKind uint8

const (
	LitNat LitKind = iota
	LitString
)

// Literal is a kernel-level literal value.
type Literal struct {
	Kind LitKind
	Nat  uint64
	Str  string
}

// TermTag discriminates the variants of TermKind.
type TermTag uint8

const (
	TagSort TermTag = iota
	TagConst
	TagVar
	TagApp
	TagLam
	TagPi
	TagLet
	TagMVar
	TagLit
)

// TermKind is the tagged union of kernel term shapes. Only the fields
// relevant to Tag are meaningful.
type TermKind struct {
	Tag TermTag

	Sort LevelId // TagSort

	ConstName SymbolId  // TagConst
	ConstUniv []LevelId // TagConst: universe instantiation

	Var uint32 // TagVar: de Bruijn index, 0 = innermost

	AppFn  TermId // TagApp
	AppArg TermId // TagApp

	Binder Binder // TagLam, TagPi
	Body   TermId // TagLam, TagPi: body under one extra binder

	LetTy    TermId // TagLet
	LetValue TermId // TagLet
	LetBody  TermId // TagLet: body under one extra binder

	MVar MetaVarId // TagMVar

	Lit Literal // TagLit
}

// TermArena is the hash-consing store of kernel terms.
// intern(kind) always returns the same TermId for structurally equal
// kinds (sub-term equality is itself TermId equality, so this is a
// genuine DAG-sharing hash-cons, not merely a value cache).
//
// Consumers must never construct a TermKind with the same fields as
// an existing term outside of Intern/the mk_* constructors: doing so
// would violate the hash-consing invariant that TermId equality
// implies structural equality (P1).
type TermArena struct {
	mu      sync.RWMutex
	terms   []TermKind
	buckets map[uint64][]TermId
}

// NewTermArena returns an empty term arena.
func NewTermArena() *TermArena {
	return &TermArena{
		buckets: make(map[uint64][]TermId, 256),
	}
}

func termHash(k TermKind) uint64 {
	h := xxhash.New()
	var b [4]byte
	putU32 := func(v uint32) {
		b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
		h.Write(b[:])
	}
	h.Write([]byte{byte(k.Tag)})
	switch k.Tag {
	case TagSort:
		putU32(uint32(k.Sort))
	case TagConst:
		putU32(uint32(k.ConstName))
		putU32(uint32(len(k.ConstUniv)))
		for _, u := range k.ConstUniv {
			putU32(uint32(u))
		}
	case TagVar:
		putU32(k.Var)
	case TagApp:
		putU32(uint32(k.AppFn))
		putU32(uint32(k.AppArg))
	case TagLam, TagPi:
		putU32(uint32(k.Binder.Name))
		putU32(uint32(k.Binder.Ty))
		putU32(uint32(k.Binder.Info))
		putU32(uint32(k.Body))
	case TagLet:
		putU32(uint32(k.LetTy))
		putU32(uint32(k.LetValue))
		putU32(uint32(k.LetBody))
	case TagMVar:
		putU32(uint32(k.MVar))
	case TagLit:
		h.Write([]byte{byte(k.Lit.Kind)})
		putU32(uint32(k.Lit.Nat))
		putU32(uint32(k.Lit.Nat >> 32))
		h.Write([]byte(k.Lit.Str))
	}
	return h.Sum64()
}

func sameKind(a, b TermKind) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagSort:
		return a.Sort == b.Sort
	case TagConst:
		if a.ConstName != b.ConstName || len(a.ConstUniv) != len(b.ConstUniv) {
			return false
		}
		for i := range a.ConstUniv {
			if a.ConstUniv[i] != b.ConstUniv[i] {
				return false
			}
		}
		return true
	case TagVar:
		return a.Var == b.Var
	case TagApp:
		return a.AppFn == b.AppFn && a.AppArg == b.AppArg
	case TagLam, TagPi:
		return a.Binder.Name == b.Binder.Name && a.Binder.Ty == b.Binder.Ty &&
			a.Binder.Info == b.Binder.Info && a.Body == b.Body
	case TagLet:
		return a.LetTy == b.LetTy && a.LetValue == b.LetValue && a.LetBody == b.LetBody
	case TagMVar:
		return a.MVar == b.MVar
	case TagLit:
		return a.Lit == b.Lit
	}
	return false
}

// Intern returns the canonical TermId for kind, allocating a new slot
// only if no structurally-equal term already exists (P1).
func (a *TermArena) Intern(kind TermKind) TermId {
	h := termHash(kind)

	a.mu.RLock()
	for _, id := range a.buckets[h] {
		if sameKind(a.terms[id], kind) {
			a.mu.RUnlock()
			return id
		}
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.buckets[h] {
		if sameKind(a.terms[id], kind) {
			return id
		}
	}
	id := TermId(len(a.terms))
	a.terms = append(a.terms, kind)
	a.buckets[h] = append(a.buckets[h], id)
	return id
}

// Kind returns the stored TermKind for id.
func (a *TermArena) Kind(id TermId) TermKind {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.terms[id]
}

// Len returns the number of distinct interned terms.
func (a *TermArena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.terms)
}

func (a *TermArena) MkSort(l LevelId) TermId {
	return a.Intern(TermKind{Tag: TagSort, Sort: l})
}

func (a *TermArena) MkConst(name SymbolId, univ []LevelId) TermId {
	return a.Intern(TermKind{Tag: TagConst, ConstName: name, ConstUniv: univ})
}

func (a *TermArena) MkVar(idx uint32) TermId {
	return a.Intern(TermKind{Tag: TagVar, Var: idx})
}

func (a *TermArena) MkApp(fn, arg TermId) TermId {
	return a.Intern(TermKind{Tag: TagApp, AppFn: fn, AppArg: arg})
}

// MkAppSpine builds ((f a0) a1) a2 ... left-associated.
func (a *TermArena) MkAppSpine(f TermId, args ...TermId) TermId {
	result := f
	for _, arg := range args {
		result = a.MkApp(result, arg)
	}
	return result
}

func (a *TermArena) MkLam(b Binder, body TermId) TermId {
	return a.Intern(TermKind{Tag: TagLam, Binder: b, Body: body})
}

func (a *TermArena) MkPi(b Binder, body TermId) TermId {
	return a.Intern(TermKind{Tag: TagPi, Binder: b, Body: body})
}

func (a *TermArena) MkLet(ty, value, body TermId) TermId {
	return a.Intern(TermKind{Tag: TagLet, LetTy: ty, LetValue: value, LetBody: body})
}

func (a *TermArena) MkMVar(id MetaVarId) TermId {
	return a.Intern(TermKind{Tag: TagMVar, MVar: id})
}

func (a *TermArena) MkNat(n uint64) TermId {
	return a.Intern(TermKind{Tag: TagLit, Lit: Literal{Kind: LitNat, Nat: n}})
}

func (a *TermArena) MkString(s string) TermId {
	return a.Intern(TermKind{Tag: TagLit, Lit: Literal{Kind: LitString, Str: s}})
}
