// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

// BuiltinNatName and BuiltinStringName are the symbol names under
// which the builtin literal types are registered in an environment
// prepared for a TypeChecker (literals need
// real types, not a Sort(zero) placeholder).
const (
	BuiltinNatName    = "Nat"
	BuiltinStringName = "String"
)

// TypeChecker implements bidirectional type checking (infer/check) and
// declaration admission over a fixed Environment.
//
// TypeChecker fixes two gaps documented in DESIGN.md / SPEC_FULL.md §9
// relative to the source this kernel was grounded on:
//
//  1. Const inference instantiates the declaration's type with the
//     Const's own universe-level arguments (via LevelArena.Instantiate),
//     instead of returning the type unchanged.
//  2. Nat and String literals infer to real builtin type constants
//     (registered once via EnsureBuiltins), not to Sort(zero).
type TypeChecker struct {
	arena   *TermArena
	levels  *LevelArena
	symbols *SymbolTable
	env     *Environment
	conv    *Converter

	natTy    TermId
	stringTy TermId
}

// NewTypeChecker builds a TypeChecker. Call EnsureBuiltins once on a
// fresh environment before checking any term containing literals.
func NewTypeChecker(arena *TermArena, levels *LevelArena, symbols *SymbolTable, env *Environment, conv *Converter) *TypeChecker {
	return &TypeChecker{arena: arena, levels: levels, symbols: symbols, env: env, conv: conv}
}

// EnsureBuiltins registers the Nat and String axioms in the checker's
// environment if not already present, and caches their Const terms.
// Idempotent: safe to call multiple times against the same (or a
// forked) environment.
func (tc *TypeChecker) EnsureBuiltins() {
	natSym := tc.symbols.Intern(BuiltinNatName)
	strSym := tc.symbols.Intern(BuiltinStringName)
	sortZero := tc.arena.MkSort(tc.levels.Zero())

	if !tc.env.HasDecl(natSym) {
		_ = tc.env.AddDecl(Declaration{Name: natSym, Ty: sortZero, Kind: DeclAxiom})
	}
	if !tc.env.HasDecl(strSym) {
		_ = tc.env.AddDecl(Declaration{Name: strSym, Ty: sortZero, Kind: DeclAxiom})
	}
	tc.natTy = tc.arena.MkConst(natSym, nil)
	tc.stringTy = tc.arena.MkConst(strSym, nil)
}

// Infer computes the type of t under ctx.
func (tc *TypeChecker) Infer(ctx *Context, t TermId) (TermId, error) {
	k := tc.arena.Kind(t)
	switch k.Tag {
	case TagSort:
		return tc.arena.MkSort(tc.levels.Succ(k.Sort)), nil

	case TagConst:
		decl, ok := tc.env.GetDecl(k.ConstName)
		if !ok {
			return 0, NewTypeError("unknown constant (symbol %d)", k.ConstName)
		}
		if len(decl.UnivParams) == 0 || len(k.ConstUniv) == 0 {
			return decl.Ty, nil
		}
		return tc.conv.substituteLevels(decl.Ty, k.ConstUniv), nil

	case TagVar:
		entry, ok := ctx.Lookup(k.Var)
		if !ok {
			return 0, NewTypeError("variable index %d out of context", k.Var)
		}
		// entry.Ty's free variables are valid one context shallower per
		// binding crossed since it was pushed: the variable itself
		// accounts for one, and k.Var more sit between it and here.
		return tc.conv.Shift(entry.Ty, k.Var+1, 0), nil

	case TagApp:
		fnTy, err := tc.Infer(ctx, k.AppFn)
		if err != nil {
			return 0, err
		}
		fnTyWhnf, err := tc.conv.Whnf(ctx, fnTy)
		if err != nil {
			return 0, err
		}
		fk := tc.arena.Kind(fnTyWhnf)
		if fk.Tag != TagPi {
			return 0, NewTypeError("application of non-function type")
		}
		if err := tc.Check(ctx, k.AppArg, fk.Binder.Ty); err != nil {
			return 0, err
		}
		return tc.conv.substitute(fk.Body, 0, k.AppArg), nil

	case TagLam:
		if err := tc.checkIsSort(ctx, k.Binder.Ty); err != nil {
			return 0, err
		}
		mark := ctx.Mark()
		ctx.PushVar(k.Binder.Name, k.Binder.Ty)
		bodyTy, err := tc.Infer(ctx, k.Body)
		ctx.Restore(mark)
		if err != nil {
			return 0, err
		}
		return tc.arena.MkPi(k.Binder, bodyTy), nil

	case TagPi:
		l1, err := tc.inferSortLevel(ctx, k.Binder.Ty)
		if err != nil {
			return 0, err
		}
		mark := ctx.Mark()
		ctx.PushVar(k.Binder.Name, k.Binder.Ty)
		l2, err := tc.inferSortLevel(ctx, k.Body)
		ctx.Restore(mark)
		if err != nil {
			return 0, err
		}
		return tc.arena.MkSort(tc.levels.Normalize(tc.levels.IMax(l1, l2))), nil

	case TagLet:
		if err := tc.checkIsSort(ctx, k.LetTy); err != nil {
			return 0, err
		}
		if err := tc.Check(ctx, k.LetValue, k.LetTy); err != nil {
			return 0, err
		}
		mark := ctx.Mark()
		ctx.PushLet(0, k.LetTy, k.LetValue)
		bodyTy, err := tc.Infer(ctx, k.LetBody)
		ctx.Restore(mark)
		if err != nil {
			return 0, err
		}
		return tc.conv.substitute(bodyTy, 0, k.LetValue), nil

	case TagMVar:
		return 0, ErrMetavarInKernelTerm

	case TagLit:
		if tc.natTy == 0 && tc.stringTy == 0 {
			tc.EnsureBuiltins()
		}
		if k.Lit.Kind == LitNat {
			return tc.natTy, nil
		}
		return tc.stringTy, nil

	default:
		return 0, NewTypeError("unrecognized term tag %d", k.Tag)
	}
}

// Check verifies that t has type expected under ctx.
// Lambdas are checked directly against the expected Pi (the
// checking-mode rule) rather than inferred and then compared, so a
// lambda whose binder type is itself elided by the caller still
// type-checks.
func (tc *TypeChecker) Check(ctx *Context, t TermId, expected TermId) error {
	k := tc.arena.Kind(t)
	if k.Tag == TagLam {
		expWhnf, err := tc.conv.Whnf(ctx, expected)
		if err != nil {
			return err
		}
		ek := tc.arena.Kind(expWhnf)
		if ek.Tag == TagPi {
			domEq, err := tc.conv.IsDefEq(ctx, k.Binder.Ty, ek.Binder.Ty)
			if err != nil {
				return err
			}
			if !domEq {
				return &ConversionError{Expected: ek.Binder.Ty, Actual: k.Binder.Ty}
			}
			mark := ctx.Mark()
			ctx.PushVar(k.Binder.Name, ek.Binder.Ty)
			err = tc.Check(ctx, k.Body, ek.Body)
			ctx.Restore(mark)
			return err
		}
	}

	actual, err := tc.Infer(ctx, t)
	if err != nil {
		return err
	}
	eq, err := tc.conv.IsDefEq(ctx, actual, expected)
	if err != nil {
		return err
	}
	if !eq {
		return &ConversionError{Expected: expected, Actual: actual}
	}
	return nil
}

// CheckDeclaration verifies that decl's type is well-sorted and, if it
// carries a value, that the value checks against the type.
func (tc *TypeChecker) CheckDeclaration(decl *Declaration) error {
	ctx := NewContext()
	if err := tc.checkIsSort(ctx, decl.Ty); err != nil {
		return err
	}
	if decl.Value != nil {
		return tc.Check(ctx, *decl.Value, decl.Ty)
	}
	return nil
}

func (tc *TypeChecker) inferSortLevel(ctx *Context, ty TermId) (LevelId, error) {
	tyTy, err := tc.Infer(ctx, ty)
	if err != nil {
		return 0, err
	}
	return tc.whnfSortLevel(ctx, tyTy)
}

func (tc *TypeChecker) checkIsSort(ctx *Context, ty TermId) error {
	_, err := tc.inferSortLevel(ctx, ty)
	return err
}

func (tc *TypeChecker) whnfSortLevel(ctx *Context, ty TermId) (LevelId, error) {
	w, err := tc.conv.Whnf(ctx, ty)
	if err != nil {
		return 0, err
	}
	wk := tc.arena.Kind(w)
	if wk.Tag != TagSort {
		return 0, NewTypeError("expected a sort")
	}
	return wk.Sort, nil
}
