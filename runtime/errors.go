// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fixed, parameterless runtime failure modes.
var (
	ErrMailboxClosed  = errors.New("runtime: mailbox closed")
	ErrMailboxEmpty   = errors.New("runtime: mailbox empty")
	ErrNotSendable    = errors.New("runtime: capability does not permit sending across a mailbox boundary")
	ErrNotUnique      = errors.New("runtime: iso capability cannot be cloned")
	ErrChannelClosed  = errors.New("runtime: channel closed")
	ErrAwaitCancelled = errors.New("runtime: awaitable sender dropped before completion")
	ErrNoAgents       = errors.New("runtime: no agents to shard or broadcast over")
)

// MailboxFull reports a send rejected by backpressure: the queue
// length had already reached the configured high water mark.
type MailboxFull struct {
	Len int
}

func (e *MailboxFull) Error() string {
	return fmt.Sprintf("runtime: mailbox full: length %d at or above high water mark", e.Len)
}

// QuorumNotReached reports a quorum call that timed out before enough
// agents responded.
type QuorumNotReached struct {
	Received int
	Required int
}

func (e *QuorumNotReached) Error() string {
	return fmt.Sprintf("runtime: quorum not reached: received %d of %d required", e.Received, e.Required)
}

// LeaseAcquisitionFailed reports a failed lease acquire or a release
// attempted by a caller that does not hold the lease.
type LeaseAcquisitionFailed struct {
	Reason string
}

func (e *LeaseAcquisitionFailed) Error() string {
	return "runtime: lease acquisition failed: " + e.Reason
}

// InternalError reports an invariant violation inside the runtime. It
// is never expected to occur and is surfaced rather than handled.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "runtime: internal error: " + e.Msg }

// Internalf constructs an InternalError with a formatted message, so
// every runtime invariant violation is greppable by a single prefix.
func Internalf(format string, args ...interface{}) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
