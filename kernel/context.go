// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

// ContextEntry is one binding in a local typing context.
type ContextEntry struct {
	Name  SymbolId
	Ty    TermId
	Value *TermId // non-nil for a let-binding
}

// Context is a stack of ContextEntry, indexed by de Bruijn index: 0
// is the innermost (most recently pushed) binding.
type Context struct {
	entries []ContextEntry
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

// Len returns the number of bindings currently in scope.
func (c *Context) Len() int { return len(c.entries) }

// PushVar pushes an ordinary variable binding and returns the new
// length (equivalently, the index of the next free slot).
func (c *Context) PushVar(name SymbolId, ty TermId) int {
	c.entries = append(c.entries, ContextEntry{Name: name, Ty: ty})
	return len(c.entries)
}

// PushLet pushes a let-binding (a binding with a known value).
func (c *Context) PushLet(name SymbolId, ty, value TermId) int {
	v := value
	c.entries = append(c.entries, ContextEntry{Name: name, Ty: ty, Value: &v})
	return len(c.entries)
}

// Pop removes the most recently pushed binding.
func (c *Context) Pop() {
	c.entries = c.entries[:len(c.entries)-1]
}

// Lookup returns the entry bound at de Bruijn index idx (0 =
// innermost), counting from the top of the stack.
func (c *Context) Lookup(idx uint32) (ContextEntry, bool) {
	pos := len(c.entries) - 1 - int(idx)
	if pos < 0 || pos >= len(c.entries) {
		return ContextEntry{}, false
	}
	return c.entries[pos], true
}

// Mark returns the current length, to be paired with Restore (or a
// Guard) to undo any bindings pushed after this point.
func (c *Context) Mark() int { return len(c.entries) }

// Restore truncates the context back to the given mark.
func (c *Context) Restore(mark int) {
	c.entries = c.entries[:mark]
}

// Guard is a scope guard combining Mark and Restore: it guarantees
// that every binding pushed after the guard was created is popped
// when Close is called, along every exit path (success, error, or
// panic), by using `defer guard.Close()` at the call site. This is
// the idiomatic Go replacement for the source's RAII ContextGuard
// (Drop-based); unlike the elaborator's own `elaborate_def`, every
// caller in this codebase defers Close immediately after opening a
// guard so no exit path can leak bindings.
type Guard struct {
	ctx  *Context
	mark int
}

// OpenGuard records the current context length.
func (c *Context) OpenGuard() *Guard {
	return &Guard{ctx: c, mark: c.Mark()}
}

// Close restores the context to the mark recorded by OpenGuard. Safe
// to call multiple times.
func (g *Guard) Close() {
	if g.ctx == nil {
		return
	}
	g.ctx.Restore(g.mark)
}
