// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"
	"time"
)

// Message wraps a payload with its capability tag and a send-time
// timestamp. Only a Message whose capability is Sendable may be
// handed to Mailbox.Send or MailboxSender.Send; the check happens once
// at that boundary rather than being enforced by the type system.
type Message[T any] struct {
	payload   Tracked[T]
	timestamp int64 // microseconds since Unix epoch
}

// NewMessage wraps payload under cap, stamped with the current time.
func NewMessage[T any](payload T, cap Capability) Message[T] {
	return Message[T]{payload: NewTracked(payload, cap), timestamp: time.Now().UnixMicro()}
}

// IsoMessage constructs a uniquely-owned message.
func IsoMessage[T any](payload T) Message[T] {
	return NewMessage(payload, Iso)
}

// ValMessage constructs an immutable, freely-shareable message.
func ValMessage[T any](payload T) Message[T] {
	return NewMessage(payload, Val)
}

// Payload returns the message's wrapped value.
func (m Message[T]) Payload() T { return m.payload.Get() }

// Cap returns the capability the message was sent under.
func (m Message[T]) Cap() Capability { return m.payload.Cap() }

// Timestamp returns the microsecond timestamp the message was stamped
// with at construction.
func (m Message[T]) Timestamp() int64 { return m.timestamp }

// ShareMessage clones a message whose capability is not unique (Val,
// Ref or Tag). It reports false for Iso, mirroring Tracked's own
// non-uniqueness rule.
func ShareMessage[T any](m Message[T], clone func(T) T) (Message[T], bool) {
	tracked, ok := Share(m.payload, clone)
	if !ok {
		return Message[T]{}, false
	}
	return Message[T]{payload: tracked, timestamp: m.timestamp}, true
}

func (m Message[T]) String() string {
	return fmt.Sprintf("Message(%v, cap=%s, ts=%d)", m.payload.Get(), m.payload.Cap(), m.timestamp)
}
