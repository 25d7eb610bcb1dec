// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fixed, parameterless kernel failure modes.
var (
	ErrNotFound             = errors.New("kernel: declaration not found")
	ErrAlreadyDeclared      = errors.New("kernel: declaration already exists")
	ErrMetavarInKernelTerm  = errors.New("kernel: metavariables not allowed in kernel term")
	ErrUnsolvedMetavariable = errors.New("kernel: unsolved metavariable")
)

// TypeError reports a malformed term: expected sort, variable out of
// context, or similar structural mistakes.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return "kernel: type error: " + e.Msg }

// NewTypeError constructs a TypeError with a formatted message.
func NewTypeError(format string, args ...interface{}) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// UniverseError reports a level-arithmetic violation.
type UniverseError struct {
	Msg string
}

func (e *UniverseError) Error() string { return "kernel: universe error: " + e.Msg }

func NewUniverseError(format string, args ...interface{}) *UniverseError {
	return &UniverseError{Msg: fmt.Sprintf(format, args...)}
}

// ConversionError reports a definitional-equality failure in check().
type ConversionError struct {
	Expected TermId
	Actual   TermId
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("kernel: conversion error: expected term #%d, got term #%d", e.Expected, e.Actual)
}

// UnificationError reports an occurs-check or structural mismatch.
type UnificationError struct {
	Msg string
}

func (e *UnificationError) Error() string { return "kernel: unification error: " + e.Msg }

func NewUnificationError(format string, args ...interface{}) *UnificationError {
	return &UnificationError{Msg: fmt.Sprintf(format, args...)}
}

// InternalError reports an invariant violation or resource exhaustion
// (e.g. out-of-fuel). It is never expected to occur and is surfaced
// rather than handled.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "kernel: internal error: " + e.Msg }

// Internalf constructs an InternalError with a formatted message. All
// invariant violations across the kernel package go through this
// helper so they are greppable by a single prefix.
func Internalf(format string, args ...interface{}) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// ErrOutOfFuel is returned (wrapped in an InternalError) when WHNF
// reduction exceeds its step budget.
var ErrOutOfFuel = errors.New("out of fuel")
