// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// LevelId is an opaque identifier into the level arena.
type LevelId uint32

// LevelKind discriminates the variants of a universe level expression.
type LevelKind uint8

const (
	LevelZero LevelKind = iota
	LevelConst
	LevelParam
	LevelSucc
	LevelMax
	LevelIMax
)

// Level is a universe-level expression. Only the fields relevant to
// Kind are meaningful: Const uses N, Param uses N (parameter index),
// Succ uses A, Max/IMax use A and B.
type Level struct {
	Kind LevelKind
	N    uint64
	A    LevelId
	B    LevelId
}

// LevelArena interns Level values by structural equality and exposes
// normalize, implementing the following rewrite rules:
//
//	Succ(Const n)       -> Const(n+1)
//	Max(Const a, Const b)  -> Const(max(a,b))
//	IMax(_, Zero)       -> Zero
//	IMax(Const a, Const b) -> Const(max(a,b))
//
// normalize is idempotent: normalize(normalize(l)) == normalize(l)
// (property P2), because every rewrite rule's output is already in
// normal form for the cases it handles, and normalize recurses
// bottom-up before applying rules at each level.
type LevelArena struct {
	mu      sync.RWMutex
	levels  []Level
	buckets map[uint64][]LevelId

	zeroID LevelId
}

// NewLevelArena returns an arena pre-seeded with the Zero level.
func NewLevelArena() *LevelArena {
	a := &LevelArena{
		buckets: make(map[uint64][]LevelId, 64),
	}
	a.zeroID = a.intern(Level{Kind: LevelZero})
	return a
}

func levelHash(l Level) uint64 {
	var buf [1 + 8 + 4 + 4]byte
	buf[0] = byte(l.Kind)
	for i := 0; i < 8; i++ {
		buf[1+i] = byte(l.N >> (8 * i))
	}
	buf[9] = byte(l.A)
	buf[10] = byte(l.A >> 8)
	buf[11] = byte(l.A >> 16)
	buf[12] = byte(l.A >> 24)
	buf[13] = byte(l.B)
	buf[14] = byte(l.B >> 8)
	buf[15] = byte(l.B >> 16)
	buf[16] = byte(l.B >> 24)
	return xxhash.Sum64(buf[:])
}

func (a *LevelArena) intern(l Level) LevelId {
	h := levelHash(l)

	a.mu.RLock()
	for _, id := range a.buckets[h] {
		if a.levels[id] == l {
			a.mu.RUnlock()
			return id
		}
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.buckets[h] {
		if a.levels[id] == l {
			return id
		}
	}
	id := LevelId(len(a.levels))
	a.levels = append(a.levels, l)
	a.buckets[h] = append(a.buckets[h], id)
	return id
}

// Kind returns the stored Level for id.
func (a *LevelArena) Kind(id LevelId) Level {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.levels[id]
}

func (a *LevelArena) Zero() LevelId { return a.zeroID }

func (a *LevelArena) Const(n uint64) LevelId {
	return a.intern(Level{Kind: LevelConst, N: n})
}

func (a *LevelArena) Param(i uint64) LevelId {
	return a.intern(Level{Kind: LevelParam, N: i})
}

func (a *LevelArena) Succ(l LevelId) LevelId {
	return a.intern(Level{Kind: LevelSucc, A: l})
}

func (a *LevelArena) Max(x, y LevelId) LevelId {
	return a.intern(Level{Kind: LevelMax, A: x, B: y})
}

func (a *LevelArena) IMax(x, y LevelId) LevelId {
	return a.intern(Level{Kind: LevelIMax, A: x, B: y})
}

// Normalize rewrites l bottom-up according to the laws above and
// returns the normal form's LevelId.
func (a *LevelArena) Normalize(l LevelId) LevelId {
	lv := a.Kind(l)
	switch lv.Kind {
	case LevelZero, LevelParam:
		return l
	case LevelConst:
		return l
	case LevelSucc:
		inner := a.Normalize(lv.A)
		iv := a.Kind(inner)
		if iv.Kind == LevelConst {
			return a.Const(iv.N + 1)
		}
		return a.Succ(inner)
	case LevelMax:
		x := a.Normalize(lv.A)
		y := a.Normalize(lv.B)
		xv, yv := a.Kind(x), a.Kind(y)
		if xv.Kind == LevelConst && yv.Kind == LevelConst {
			if xv.N >= yv.N {
				return a.Const(xv.N)
			}
			return a.Const(yv.N)
		}
		if x == y {
			return x
		}
		return a.Max(x, y)
	case LevelIMax:
		x := a.Normalize(lv.A)
		y := a.Normalize(lv.B)
		yv := a.Kind(y)
		if yv.Kind == LevelZero {
			return a.zeroID
		}
		xv := a.Kind(x)
		if xv.Kind == LevelConst && yv.Kind == LevelConst {
			if xv.N >= yv.N {
				return a.Const(xv.N)
			}
			return a.Const(yv.N)
		}
		if yv.Kind == LevelSucc {
			// IMax(_, Succ _) = Max(_, Succ _)
			return a.Normalize(a.Max(x, y))
		}
		return a.IMax(x, y)
	default:
		return l
	}
}

// Equal reports whether x and y denote the same normalized level.
func (a *LevelArena) Equal(x, y LevelId) bool {
	return a.Normalize(x) == a.Normalize(y)
}

// Instantiate substitutes each Param(i) occurring in l with args[i],
// used when unfolding a universe-polymorphic Const (open
// question 1: Const unfolding must substitute passed level args, not
// ignore them).
func (a *LevelArena) Instantiate(l LevelId, args []LevelId) LevelId {
	lv := a.Kind(l)
	switch lv.Kind {
	case LevelZero, LevelConst:
		return l
	case LevelParam:
		if int(lv.N) < len(args) {
			return args[lv.N]
		}
		return l
	case LevelSucc:
		return a.Succ(a.Instantiate(lv.A, args))
	case LevelMax:
		return a.Max(a.Instantiate(lv.A, args), a.Instantiate(lv.B, args))
	case LevelIMax:
		return a.IMax(a.Instantiate(lv.A, args), a.Instantiate(lv.B, args))
	default:
		return l
	}
}
