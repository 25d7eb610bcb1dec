// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "fmt"

// DefaultFuel bounds the number of WHNF reduction steps before giving
// up with an InternalError. It is the kernel's primary
// anti-livelock device.
const DefaultFuel = 10000

type whnfCacheKey struct {
	term   TermId
	ctxLen int
}

// Converter implements WHNF reduction, definitional equality, and
// capture-avoiding substitution.
//
// Converter fixes two gaps present in the Rust source this kernel was
// grounded on (documented in DESIGN.md / SPEC_FULL.md §9):
//
//  1. Const unfolding substitutes the passed universe-level arguments
//     into the declaration body before reducing, instead of ignoring
//     them.
//  2. substitute performs full capture-avoiding de Bruijn substitution,
//     shifting the replacement's free variables by the number of
//     binders crossed — the source's substitute does not shift.
//
// It additionally implements iota-reduction (recursor-on-constructor),
// which has no source to ground on at all (the source ships only the
// Environment-side data shapes for inductives/constructors, no
// reduction rule).
type Converter struct {
	arena  *TermArena
	levels *LevelArena
	env    *Environment
	cache  map[whnfCacheKey]TermId
}

// NewConverter builds a Converter over the given arena/level
// arena/environment.
func NewConverter(arena *TermArena, levels *LevelArena, env *Environment) *Converter {
	return &Converter{
		arena:  arena,
		levels: levels,
		env:    env,
		cache:  make(map[whnfCacheKey]TermId),
	}
}

// ClearCache discards memoized WHNF results. Must be called whenever
// the environment gains declarations that could change the WHNF of
// previously-cached terms (e.g. after admitting a new reducible def).
func (c *Converter) ClearCache() {
	c.cache = make(map[whnfCacheKey]TermId)
}

// Whnf reduces term to weak head normal form under ctx.
func (c *Converter) Whnf(ctx *Context, term TermId) (TermId, error) {
	return c.whnfFuel(ctx, term, DefaultFuel)
}

func (c *Converter) whnfFuel(ctx *Context, term TermId, fuel int) (TermId, error) {
	if fuel <= 0 {
		return 0, Internalf("%s", ErrOutOfFuel.Error())
	}

	// The key records only the context's length, not its contents, so
	// the cache is used only while ctx holds no let-binding: then no
	// variable can unfold and the result is a pure function of
	// (term, ctxLen) over THIS environment's arena.
	cacheable := true
	for _, entry := range ctx.entries {
		if entry.Value != nil {
			cacheable = false
			break
		}
	}
	key := whnfCacheKey{term: term, ctxLen: ctx.Len()}
	if cacheable {
		if cached, ok := c.cache[key]; ok {
			return cached, nil
		}
	}

	result, err := c.whnfStep(ctx, term, fuel)
	if err != nil {
		return 0, err
	}
	if cacheable {
		c.cache[key] = result
	}
	return result, nil
}

func (c *Converter) whnfStep(ctx *Context, term TermId, fuel int) (TermId, error) {
	k := c.arena.Kind(term)
	switch k.Tag {
	case TagVar:
		entry, ok := ctx.Lookup(k.Var)
		if !ok {
			return term, nil
		}
		if entry.Value != nil {
			// entry.Value's free variables are valid at the let-binding's
			// own depth, shallower than here by k.Var+1 bindings.
			shifted := c.Shift(*entry.Value, k.Var+1, 0)
			return c.whnfFuel(ctx, shifted, fuel-1)
		}
		return term, nil

	case TagConst:
		decl, ok := c.env.GetDecl(k.ConstName)
		if !ok {
			return term, nil
		}
		if !decl.IsReducible() {
			return term, nil
		}
		body := *decl.Value
		if len(decl.UnivParams) > 0 {
			body = c.instantiateUniverseParams(body, decl.UnivParams, k.ConstUniv)
		}
		return c.whnfFuel(ctx, body, fuel-1)

	case TagApp:
		head, args := c.spine(term)
		whnfHead, err := c.whnfFuel(ctx, head, fuel-1)
		if err != nil {
			return 0, err
		}

		if reduced, ok, err := c.tryIota(ctx, whnfHead, args, fuel); err != nil {
			return 0, err
		} else if ok {
			return c.whnfFuel(ctx, reduced, fuel-1)
		}

		hk := c.arena.Kind(whnfHead)
		if hk.Tag == TagLam && len(args) > 0 {
			betaBody := c.substitute(hk.Body, 0, args[0])
			rest := args[1:]
			applied := c.arena.MkAppSpine(betaBody, rest...)
			return c.whnfFuel(ctx, applied, fuel-1)
		}
		return c.arena.MkAppSpine(whnfHead, args...), nil

	case TagLet:
		body := c.substitute(k.LetBody, 0, k.LetValue)
		return c.whnfFuel(ctx, body, fuel-1)

	default: // Sort, Pi, Lam, MVar, Lit — already WHNF
		return term, nil
	}
}

// spine decomposes an application term into its head and the list of
// arguments in application order, i.e. term == head applied to
// args[0], then args[1], ...
func (c *Converter) spine(term TermId) (TermId, []TermId) {
	var args []TermId
	cur := term
	for {
		k := c.arena.Kind(cur)
		if k.Tag != TagApp {
			break
		}
		args = append(args, k.AppArg)
		cur = k.AppFn
	}
	// args were collected innermost-first; reverse to application order.
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return cur, args
}

// tryIota attempts recursor-on-constructor reduction: head names a
// Recursor declaration, and (given the simplified, non-indexed
// calling convention documented in DESIGN.md: args are exactly the
// inductive's minor premises in constructor-declaration order
// followed by the major premise) the major premise WHNFs to a
// constructor application.
func (c *Converter) tryIota(ctx *Context, head TermId, args []TermId, fuel int) (TermId, bool, error) {
	hk := c.arena.Kind(head)
	if hk.Tag != TagConst {
		return 0, false, nil
	}
	decl, ok := c.env.GetDecl(hk.ConstName)
	if !ok || decl.Kind != DeclRecursor {
		return 0, false, nil
	}
	ind, ctors, ok := c.env.GetInductive(decl.Parent)
	if !ok || len(ctors) == 0 {
		return 0, false, nil
	}
	numMinors := len(ctors)
	if len(args) < numMinors+1 {
		return 0, false, nil
	}
	minors := args[:numMinors]
	major := args[numMinors]
	extra := args[numMinors+1:]

	majorWhnf, err := c.whnfFuel(ctx, major, fuel-1)
	if err != nil {
		return 0, false, err
	}
	mHead, mArgs := c.spine(majorWhnf)
	mk := c.arena.Kind(mHead)
	if mk.Tag != TagConst {
		return 0, false, nil
	}
	ctorParent, isCtor := c.env.ParentOf(mk.ConstName)
	if !isCtor || ctorParent != decl.Parent {
		return 0, false, nil
	}

	var ctorDecl *Declaration
	ctorIdx := -1
	for i, cdecl := range ctors {
		if cdecl.Name == mk.ConstName {
			ctorDecl = cdecl
			ctorIdx = i
			break
		}
	}
	if ctorDecl == nil {
		return 0, false, fmt.Errorf("%w: constructor %d not found on inductive %d", ErrNotFound, mk.ConstName, decl.Parent)
	}
	_ = ind

	minor := minors[ctorIdx]
	// Apply the minor premise to the constructor's own fields, plus
	// (for fields flagged recursive) the corresponding recursive call
	// of the same recursor on that field.
	result := minor
	for i, field := range mArgs {
		result = c.arena.MkApp(result, field)
		if i < len(ctorDecl.RecursiveArg) && ctorDecl.RecursiveArg[i] {
			recCall := c.arena.MkAppSpine(head, append(append([]TermId{}, minors...), field)...)
			result = c.arena.MkApp(result, recCall)
		}
	}
	result = c.arena.MkAppSpine(result, extra...)
	return result, true, nil
}

// instantiateUniverseParams substitutes each level parameter in body
// named by paramNames with the corresponding entry of args, resolving
// SPEC_FULL.md §9's open question 1.
func (c *Converter) instantiateUniverseParams(body TermId, paramNames []string, args []LevelId) TermId {
	if len(args) == 0 {
		return body
	}
	return c.substituteLevels(body, args)
}

func (c *Converter) substituteLevels(term TermId, args []LevelId) TermId {
	k := c.arena.Kind(term)
	switch k.Tag {
	case TagSort:
		return c.arena.MkSort(c.levels.Instantiate(k.Sort, args))
	case TagConst:
		newUniv := make([]LevelId, len(k.ConstUniv))
		for i, u := range k.ConstUniv {
			newUniv[i] = c.levels.Instantiate(u, args)
		}
		return c.arena.MkConst(k.ConstName, newUniv)
	case TagApp:
		return c.arena.MkApp(c.substituteLevels(k.AppFn, args), c.substituteLevels(k.AppArg, args))
	case TagLam:
		b := k.Binder
		b.Ty = c.substituteLevels(b.Ty, args)
		return c.arena.MkLam(b, c.substituteLevels(k.Body, args))
	case TagPi:
		b := k.Binder
		b.Ty = c.substituteLevels(b.Ty, args)
		return c.arena.MkPi(b, c.substituteLevels(k.Body, args))
	case TagLet:
		return c.arena.MkLet(c.substituteLevels(k.LetTy, args), c.substituteLevels(k.LetValue, args), c.substituteLevels(k.LetBody, args))
	default:
		return term
	}
}

// Substitute replaces Var(0) with replacement throughout term — the
// operation needed to instantiate a Pi/Lam body once its bound
// argument is known. Exported for the elaborator, which must thread
// elaborated arguments through dependent result types the same way
// the kernel does during beta-reduction.
func (c *Converter) Substitute(term TermId, replacement TermId) TermId {
	return c.substitute(term, 0, replacement)
}

// substitute replaces Var(idx) with replacement throughout term,
// incrementing idx under each binder crossed and shifting
// replacement's free variables by the number of binders crossed
// (full capture-avoiding de Bruijn substitution with shift — the
// source's substitute omits the shift; this one does not).
func (c *Converter) substitute(term TermId, idx uint32, replacement TermId) TermId {
	return c.substituteAt(term, idx, replacement, 0)
}

func (c *Converter) substituteAt(term TermId, idx uint32, replacement TermId, depth uint32) TermId {
	k := c.arena.Kind(term)
	switch k.Tag {
	case TagVar:
		switch {
		case k.Var == idx+depth:
			return c.Shift(replacement, depth, 0)
		case k.Var > idx+depth:
			return c.arena.MkVar(k.Var - 1)
		default:
			return term
		}
	case TagApp:
		return c.arena.MkApp(
			c.substituteAt(k.AppFn, idx, replacement, depth),
			c.substituteAt(k.AppArg, idx, replacement, depth),
		)
	case TagLam:
		b := k.Binder
		b.Ty = c.substituteAt(b.Ty, idx, replacement, depth)
		return c.arena.MkLam(b, c.substituteAt(k.Body, idx, replacement, depth+1))
	case TagPi:
		b := k.Binder
		b.Ty = c.substituteAt(b.Ty, idx, replacement, depth)
		return c.arena.MkPi(b, c.substituteAt(k.Body, idx, replacement, depth+1))
	case TagLet:
		return c.arena.MkLet(
			c.substituteAt(k.LetTy, idx, replacement, depth),
			c.substituteAt(k.LetValue, idx, replacement, depth),
			c.substituteAt(k.LetBody, idx, replacement, depth+1),
		)
	default: // Sort, Const, MVar, Lit — no bound variables
		return term
	}
}

// Shift adds amount to every free variable in term that is >= cutoff,
// used to adjust a replacement's free variables when it is substituted
// underneath `amount` additional binders, or when a type/value stored
// at an earlier (shallower) context depth is read back out for use at
// a deeper one.
func (c *Converter) Shift(term TermId, amount uint32, cutoff uint32) TermId {
	if amount == 0 {
		return term
	}
	k := c.arena.Kind(term)
	switch k.Tag {
	case TagVar:
		if k.Var >= cutoff {
			return c.arena.MkVar(k.Var + amount)
		}
		return term
	case TagApp:
		return c.arena.MkApp(c.Shift(k.AppFn, amount, cutoff), c.Shift(k.AppArg, amount, cutoff))
	case TagLam:
		b := k.Binder
		b.Ty = c.Shift(b.Ty, amount, cutoff)
		return c.arena.MkLam(b, c.Shift(k.Body, amount, cutoff+1))
	case TagPi:
		b := k.Binder
		b.Ty = c.Shift(b.Ty, amount, cutoff)
		return c.arena.MkPi(b, c.Shift(k.Body, amount, cutoff+1))
	case TagLet:
		return c.arena.MkLet(c.Shift(k.LetTy, amount, cutoff), c.Shift(k.LetValue, amount, cutoff), c.Shift(k.LetBody, amount, cutoff+1))
	default:
		return term
	}
}

// IsDefEq reports whether t1 and t2 are definitionally equal modulo
// βδιζ and α. Fast path: TermId equality via hash-consing.
func (c *Converter) IsDefEq(ctx *Context, t1, t2 TermId) (bool, error) {
	if t1 == t2 {
		return true, nil
	}
	w1, err := c.Whnf(ctx, t1)
	if err != nil {
		return false, err
	}
	w2, err := c.Whnf(ctx, t2)
	if err != nil {
		return false, err
	}
	if w1 == w2 {
		return true, nil
	}
	k1, k2 := c.arena.Kind(w1), c.arena.Kind(w2)
	if k1.Tag != k2.Tag {
		return false, nil
	}
	switch k1.Tag {
	case TagSort:
		return c.levels.Equal(k1.Sort, k2.Sort), nil
	case TagConst:
		if k1.ConstName != k2.ConstName || len(k1.ConstUniv) != len(k2.ConstUniv) {
			return false, nil
		}
		for i := range k1.ConstUniv {
			if !c.levels.Equal(k1.ConstUniv[i], k2.ConstUniv[i]) {
				return false, nil
			}
		}
		return true, nil
	case TagVar:
		return k1.Var == k2.Var, nil
	case TagApp:
		fnEq, err := c.IsDefEq(ctx, k1.AppFn, k2.AppFn)
		if err != nil || !fnEq {
			return false, err
		}
		return c.IsDefEq(ctx, k1.AppArg, k2.AppArg)
	case TagLam, TagPi:
		tyEq, err := c.IsDefEq(ctx, k1.Binder.Ty, k2.Binder.Ty)
		if err != nil || !tyEq {
			return false, err
		}
		mark := ctx.Mark()
		ctx.PushVar(k1.Binder.Name, k1.Binder.Ty)
		defer ctx.Restore(mark)
		return c.IsDefEq(ctx, k1.Body, k2.Body)
	case TagLet:
		vEq, err := c.IsDefEq(ctx, k1.LetValue, k2.LetValue)
		if err != nil || !vEq {
			return false, err
		}
		return c.IsDefEq(ctx, k1.LetBody, k2.LetBody)
	case TagMVar:
		return k1.MVar == k2.MVar, nil
	case TagLit:
		return k1.Lit == k2.Lit, nil
	default:
		return false, nil
	}
}
