// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "sync"

// SymbolId is an opaque, densely-allocated identifier for an interned
// name. Two SymbolIds are equal iff the interned strings are equal.
type SymbolId uint32

// SymbolTable interns arbitrary strings into dense SymbolIds. It is
// safe for concurrent use: concurrent interning of the same string
// always returns the same id, and ids are never reclaimed.
type SymbolTable struct {
	mu      sync.RWMutex
	byName  map[string]SymbolId
	byID    []string
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string]SymbolId, 64),
	}
}

// Intern returns the SymbolId for s, allocating a new one if s has
// not been seen before.
func (t *SymbolTable) Intern(s string) SymbolId {
	t.mu.RLock()
	if id, ok := t.byName[s]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double-checked: another writer may have interned s while we
	// waited for the write lock.
	if id, ok := t.byName[s]; ok {
		return id
	}
	id := SymbolId(len(t.byID))
	t.byID = append(t.byID, s)
	t.byName[s] = id
	return id
}

// Resolve returns the string interned as id, or false if id is
// unknown to this table.
func (t *SymbolTable) Resolve(id SymbolId) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		return "", false
	}
	return t.byID[id], true
}

// Len returns the number of distinct interned symbols.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
