// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package elab

import "github.com/leanr-go/leanr/kernel"

// LocalBinding is one name's entry on the elaboration context's
// per-name shadow stack: its de Bruijn level, symbol, and type.
type LocalBinding struct {
	Sym   kernel.SymbolId
	Ty    kernel.TermId
	Level uint32
}

// Context tracks local bindings by de Bruijn level during
// elaboration, alongside a kernel.Context kept in lockstep so the
// same scope can be handed straight to whnf/check/unify calls without
// a second bookkeeping pass. Level-keyed lookup (rather than the
// kernel's index-keyed one) lets name resolution stay correct as
// nested scopes push and pop around it; LevelToIndex converts to the
// index the kernel actually wants at the point of use.
//
// Every Push must be paired with a Pop of the same name once its
// scope ends. Push/Pop hold list discipline: elaborate_def's
// would-be "pop every pushed parameter" loop in the source was a
// dead no-op (the loop body was empty), silently leaking bindings
// into the environment for every subsequent declaration. Open and
// Close below give that loop actual pop statements.
type Context struct {
	kctx     *kernel.Context
	bindings map[string][]LocalBinding
}

// NewContext returns an empty elaboration context.
func NewContext() *Context {
	return &Context{
		kctx:     kernel.NewContext(),
		bindings: make(map[string][]LocalBinding),
	}
}

// Depth returns the number of bindings currently in scope.
func (c *Context) Depth() uint32 { return uint32(c.kctx.Len()) }

// Kernel returns the underlying kernel.Context, for direct use by
// conversion/unification/type-checking calls.
func (c *Context) Kernel() *kernel.Context { return c.kctx }

// Push binds name at the next de Bruijn level, returning that level.
func (c *Context) Push(name string, sym kernel.SymbolId, ty kernel.TermId) uint32 {
	level := c.Depth()
	c.kctx.PushVar(sym, ty)
	c.bindings[name] = append(c.bindings[name], LocalBinding{Sym: sym, Ty: ty, Level: level})
	return level
}

// PushLet binds name to a let-value at the next de Bruijn level.
func (c *Context) PushLet(name string, sym kernel.SymbolId, ty, value kernel.TermId) uint32 {
	level := c.Depth()
	c.kctx.PushLet(sym, ty, value)
	c.bindings[name] = append(c.bindings[name], LocalBinding{Sym: sym, Ty: ty, Level: level})
	return level
}

// Pop removes the innermost binding of name, restoring whatever name
// shadowed before it (if any). It is a caller error to Pop a name
// with no entries currently pushed; Pop is a no-op in that case
// rather than panicking, since a defer'd cleanup after a failed Push
// should still be safe to run.
func (c *Context) Pop(name string) {
	stack, ok := c.bindings[name]
	if !ok || len(stack) == 0 {
		return
	}
	c.bindings[name] = stack[:len(stack)-1]
	c.kctx.Pop()
}

// Lookup returns the innermost binding of name, if any.
func (c *Context) Lookup(name string) (LocalBinding, bool) {
	stack, ok := c.bindings[name]
	if !ok || len(stack) == 0 {
		return LocalBinding{}, false
	}
	return stack[len(stack)-1], true
}

// LevelToIndex converts a de Bruijn level (assigned when a binding
// was pushed) into the de Bruijn index the kernel expects at the
// current depth.
func (c *Context) LevelToIndex(level uint32) uint32 {
	return c.Depth() - level - 1
}

// Frame is a scope guard pairing a Context with one or more pushed
// names, so every Push in a scope is undone along every exit path via
// `defer frame.Close()`.
type Frame struct {
	ctx   *Context
	names []string
}

// OpenFrame starts a new scope guard on ctx.
func (c *Context) OpenFrame() *Frame {
	return &Frame{ctx: c}
}

// Push binds name within the frame's scope and records it for Close.
func (f *Frame) Push(name string, sym kernel.SymbolId, ty kernel.TermId) uint32 {
	f.names = append(f.names, name)
	return f.ctx.Push(name, sym, ty)
}

// PushLet binds name to a let-value within the frame's scope.
func (f *Frame) PushLet(name string, sym kernel.SymbolId, ty, value kernel.TermId) uint32 {
	f.names = append(f.names, name)
	return f.ctx.PushLet(name, sym, ty, value)
}

// Close pops every name pushed through this frame, most recent first.
func (f *Frame) Close() {
	for i := len(f.names) - 1; i >= 0; i-- {
		f.ctx.Pop(f.names[i])
	}
	f.names = nil
}
