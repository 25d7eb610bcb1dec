// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

// Substitution assigns solved metavariables to terms. Assignment is
// write-once: once a MetaVarId is assigned it is never reassigned or
// mutated, which is what makes the recursive Resolve safe to
// cache-free recompute on every call.
type Substitution struct {
	assign map[MetaVarId]TermId
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{assign: make(map[MetaVarId]TermId)}
}

// Assign binds mv to t. Returns false without modifying the
// substitution if mv is already assigned (write-once).
func (s *Substitution) Assign(mv MetaVarId, t TermId) bool {
	if _, ok := s.assign[mv]; ok {
		return false
	}
	s.assign[mv] = t
	return true
}

// Lookup returns the term directly assigned to mv, if any (no
// transitive resolution).
func (s *Substitution) Lookup(mv MetaVarId) (TermId, bool) {
	t, ok := s.assign[mv]
	return t, ok
}

// ConstraintKind discriminates the kinds of unification obligation.
type ConstraintKind uint8

const (
	ConstraintUnify ConstraintKind = iota
	ConstraintIsSort
	ConstraintHasType
)

// Constraint is one obligation in the unifier's queue.
type Constraint struct {
	Kind ConstraintKind

	// ConstraintUnify
	Lhs, Rhs TermId

	// ConstraintIsSort
	Term TermId

	// ConstraintHasType
	Value      TermId
	ExpectedTy TermId

	Ctx *Context
}

// Unifier drains a queue of Constraints against a Converter and
// TypeChecker, solving metavariables by structural decomposition and
// assignment.
type Unifier struct {
	arena  *TermArena
	levels *LevelArena
	conv   *Converter
	tc     *TypeChecker
	sub    *Substitution
	queue  []Constraint
}

// NewUnifier builds a Unifier with a fresh empty Substitution.
func NewUnifier(arena *TermArena, levels *LevelArena, conv *Converter, tc *TypeChecker) *Unifier {
	return &Unifier{arena: arena, levels: levels, conv: conv, tc: tc, sub: NewSubstitution()}
}

// Substitution exposes the unifier's current (possibly partial)
// solution.
func (u *Unifier) Substitution() *Substitution { return u.sub }

// Push adds a constraint to the queue.
func (u *Unifier) Push(c Constraint) { u.queue = append(u.queue, c) }

// PushUnify is a convenience for the common ConstraintUnify case.
func (u *Unifier) PushUnify(ctx *Context, lhs, rhs TermId) {
	u.Push(Constraint{Kind: ConstraintUnify, Lhs: lhs, Rhs: rhs, Ctx: ctx})
}

// Resolve applies the current substitution to t, following a solved
// metavariable chain to its final term and recursing into subterms
// that themselves contain solved metavariables.
func (u *Unifier) Resolve(t TermId) TermId {
	k := u.arena.Kind(t)
	switch k.Tag {
	case TagMVar:
		if assigned, ok := u.sub.Lookup(k.MVar); ok {
			return u.Resolve(assigned)
		}
		return t
	case TagApp:
		return u.arena.MkApp(u.Resolve(k.AppFn), u.Resolve(k.AppArg))
	case TagLam:
		b := k.Binder
		b.Ty = u.Resolve(b.Ty)
		return u.arena.MkLam(b, u.Resolve(k.Body))
	case TagPi:
		b := k.Binder
		b.Ty = u.Resolve(b.Ty)
		return u.arena.MkPi(b, u.Resolve(k.Body))
	case TagLet:
		return u.arena.MkLet(u.Resolve(k.LetTy), u.Resolve(k.LetValue), u.Resolve(k.LetBody))
	default:
		return t
	}
}

// Solve drains the constraint queue, applying structural decomposition
// to ConstraintUnify obligations and assigning metavariables when one
// side is a bare, unassigned MVar whose occurs-check passes. It
// returns an error on the first irreconcilable constraint.
//
// Solve is idempotent given a fully-drained queue: calling it again
// with no new constraints pushed is a no-op (property P6), since an
// empty queue immediately returns nil.
func (u *Unifier) Solve() error {
	for len(u.queue) > 0 {
		c := u.queue[0]
		u.queue = u.queue[1:]

		switch c.Kind {
		case ConstraintUnify:
			if err := u.unify(c.Ctx, c.Lhs, c.Rhs); err != nil {
				return err
			}
		case ConstraintIsSort:
			w, err := u.conv.Whnf(c.Ctx, u.Resolve(c.Term))
			if err != nil {
				return err
			}
			if u.arena.Kind(w).Tag != TagSort {
				return NewUnificationError("expected a sort")
			}
		case ConstraintHasType:
			if err := u.tc.Check(c.Ctx, u.Resolve(c.Value), u.Resolve(c.ExpectedTy)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *Unifier) unify(ctx *Context, lhs, rhs TermId) error {
	lhs, rhs = u.Resolve(lhs), u.Resolve(rhs)
	if lhs == rhs {
		return nil
	}

	lk, rk := u.arena.Kind(lhs), u.arena.Kind(rhs)

	if lk.Tag == TagMVar {
		return u.assign(ctx, lk.MVar, rhs)
	}
	if rk.Tag == TagMVar {
		return u.assign(ctx, rk.MVar, lhs)
	}

	wl, err := u.conv.Whnf(ctx, lhs)
	if err != nil {
		return err
	}
	wr, err := u.conv.Whnf(ctx, rhs)
	if err != nil {
		return err
	}
	if wl == wr {
		return nil
	}
	wlk, wrk := u.arena.Kind(wl), u.arena.Kind(wr)

	if wlk.Tag == TagMVar {
		return u.assign(ctx, wlk.MVar, wr)
	}
	if wrk.Tag == TagMVar {
		return u.assign(ctx, wrk.MVar, wl)
	}

	if wlk.Tag != wrk.Tag {
		return NewUnificationError("head mismatch: tag %d vs %d", wlk.Tag, wrk.Tag)
	}

	switch wlk.Tag {
	case TagSort:
		if !u.levels.Equal(wlk.Sort, wrk.Sort) {
			return NewUnificationError("universe mismatch")
		}
		return nil
	case TagConst:
		if wlk.ConstName != wrk.ConstName || len(wlk.ConstUniv) != len(wrk.ConstUniv) {
			return NewUnificationError("constant mismatch")
		}
		for i := range wlk.ConstUniv {
			if !u.levels.Equal(wlk.ConstUniv[i], wrk.ConstUniv[i]) {
				return NewUnificationError("constant universe argument mismatch")
			}
		}
		return nil
	case TagVar:
		if wlk.Var != wrk.Var {
			return NewUnificationError("bound variable mismatch")
		}
		return nil
	case TagApp:
		if err := u.unify(ctx, wlk.AppFn, wrk.AppFn); err != nil {
			return err
		}
		return u.unify(ctx, wlk.AppArg, wrk.AppArg)
	case TagLam, TagPi:
		if err := u.unify(ctx, wlk.Binder.Ty, wrk.Binder.Ty); err != nil {
			return err
		}
		mark := ctx.Mark()
		ctx.PushVar(wlk.Binder.Name, wlk.Binder.Ty)
		err := u.unify(ctx, wlk.Body, wrk.Body)
		ctx.Restore(mark)
		return err
	case TagLet:
		if err := u.unify(ctx, wlk.LetValue, wrk.LetValue); err != nil {
			return err
		}
		return u.unify(ctx, wlk.LetBody, wrk.LetBody)
	case TagLit:
		if wlk.Lit != wrk.Lit {
			return NewUnificationError("literal mismatch")
		}
		return nil
	default:
		return NewUnificationError("unsolvable constraint between term #%d and #%d", wl, wr)
	}
}

func (u *Unifier) assign(ctx *Context, mv MetaVarId, t TermId) error {
	t = u.Resolve(t)
	if tk := u.arena.Kind(t); tk.Tag == TagMVar && tk.MVar == mv {
		return nil
	}
	if u.occurs(mv, t) {
		return NewUnificationError("occurs check failed: ?%d occurs in its own solution", mv)
	}
	if !u.sub.Assign(mv, t) {
		existing, _ := u.sub.Lookup(mv)
		return u.unify(ctx, existing, t)
	}
	return nil
}

// occurs reports whether mv appears free anywhere within t (property
// P7: assign must reject any solution that would make the
// substitution circular).
func (u *Unifier) occurs(mv MetaVarId, t TermId) bool {
	k := u.arena.Kind(t)
	switch k.Tag {
	case TagMVar:
		if k.MVar == mv {
			return true
		}
		if assigned, ok := u.sub.Lookup(k.MVar); ok {
			return u.occurs(mv, assigned)
		}
		return false
	case TagApp:
		return u.occurs(mv, k.AppFn) || u.occurs(mv, k.AppArg)
	case TagLam, TagPi:
		return u.occurs(mv, k.Binder.Ty) || u.occurs(mv, k.Body)
	case TagLet:
		return u.occurs(mv, k.LetTy) || u.occurs(mv, k.LetValue) || u.occurs(mv, k.LetBody)
	default:
		return false
	}
}
