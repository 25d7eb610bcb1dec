// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package elab

import "github.com/leanr-go/leanr/kernel"

// ImplicitHandler inserts fresh metavariables for a function type's
// leading implicit/strict-implicit/instance-implicit binders.
//
// The source this package is grounded on never implemented this: its
// insert_implicits always returned an empty Vec regardless of input,
// with no corresponding call site either, so a function declared with
// implicit parameters could never actually have them filled in by
// elaboration. InsertLeading below is a real implementation: it walks
// the Pi telescope, minting one metavariable per leading non-Default
// binder and substituting it into the remaining telescope before
// looking at the next binder, so later implicit binders that depend
// on earlier ones see the right type.
type ImplicitHandler struct {
	arena *kernel.TermArena
	conv  *kernel.Converter
}

// NewImplicitHandler builds a handler over the given arena/converter.
func NewImplicitHandler(arena *kernel.TermArena, conv *kernel.Converter) *ImplicitHandler {
	return &ImplicitHandler{arena: arena, conv: conv}
}

// InsertLeading repeatedly peels off leading implicit-kind Pi binders
// of funcType, minting a fresh metavariable (at the given context
// depth) for each and substituting it into the telescope, until it
// reaches a Default binder or a non-Pi type. It returns the minted
// argument terms in order and the (possibly reduced) remaining type.
func (h *ImplicitHandler) InsertLeading(kctx *kernel.Context, mctx *MetaVarContext, depth uint32, funcType kernel.TermId) ([]kernel.TermId, kernel.TermId, error) {
	var args []kernel.TermId
	cur := funcType
	for {
		whnf, err := h.conv.Whnf(kctx, cur)
		if err != nil {
			return nil, 0, err
		}
		k := h.arena.Kind(whnf)
		if k.Tag != kernel.TagPi || k.Binder.Info == kernel.Default {
			return args, whnf, nil
		}
		mv := mctx.Fresh(k.Binder.Ty, depth)
		mvTerm := h.arena.MkMVar(mv)
		args = append(args, mvTerm)
		cur = h.conv.Substitute(k.Body, mvTerm)
	}
}
