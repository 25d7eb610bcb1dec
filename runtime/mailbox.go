// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"sync"
	"sync/atomic"
)

// MailboxConfig bounds a Mailbox's capacity and its two watermarks.
// HighWater must be <= Capacity; LowWater must be < HighWater.
type MailboxConfig struct {
	Capacity  int
	HighWater int
	LowWater  int
}

// DefaultMailboxConfig matches the runtime's own defaults.
func DefaultMailboxConfig() MailboxConfig {
	return MailboxConfig{Capacity: 1000, HighWater: 800, LowWater: 200}
}

// Mailbox is a single bounded queue per agent: a ring buffer guarded
// by a mutex plus a broadcast channel standing in for a condition
// variable (select-compatible, unlike sync.Cond, so Recv can honor a
// context deadline), with the queue length additionally kept in an
// atomic counter so Len/IsHighWater/IsLowWater never take the lock on
// the hot path.
type Mailbox[T any] struct {
	mu      sync.Mutex
	waitCh  chan struct{}
	buf     []Message[T]
	head    int
	count   int
	closed  bool
	config  MailboxConfig
	senders atomic.Int64
	len     atomic.Int64
}

// NewMailbox creates a mailbox with the given configuration. It starts
// with zero open sender references; every handle obtained via Sender
// must eventually be closed for the mailbox to close once the last
// one is dropped.
func NewMailbox[T any](config MailboxConfig) *Mailbox[T] {
	mb := &Mailbox[T]{
		waitCh: make(chan struct{}),
		buf:    make([]Message[T], config.Capacity),
		config: config,
	}
	return mb
}

// NewDefaultMailbox creates a mailbox with DefaultMailboxConfig.
func NewDefaultMailbox[T any]() *Mailbox[T] {
	return NewMailbox[T](DefaultMailboxConfig())
}

// Sender returns a new sender handle, incrementing the mailbox's open
// sender count. The mailbox closes once every issued sender has been
// closed.
func (mb *Mailbox[T]) Sender() MailboxSender[T] {
	mb.senders.Add(1)
	return MailboxSender[T]{mb: mb}
}

// Receiver returns a new receiver handle.
func (mb *Mailbox[T]) Receiver() MailboxReceiver[T] {
	return MailboxReceiver[T]{mb: mb}
}

// Len returns the current queue length without taking the lock.
func (mb *Mailbox[T]) Len() int { return int(mb.len.Load()) }

// IsEmpty reports whether the queue currently holds no messages.
func (mb *Mailbox[T]) IsEmpty() bool { return mb.Len() == 0 }

// IsHighWater reports whether the queue length has reached the high
// water mark. This is the same boundary Send enforces: a length
// already at high water triggers backpressure on the next send.
func (mb *Mailbox[T]) IsHighWater() bool { return mb.Len() >= mb.config.HighWater }

// IsLowWater reports whether the queue length is below the low water
// mark, the advisory signal for producers to resume at full rate.
func (mb *Mailbox[T]) IsLowWater() bool { return mb.Len() < mb.config.LowWater }

func (mb *Mailbox[T]) broadcast() {
	close(mb.waitCh)
	mb.waitCh = make(chan struct{})
}

func (mb *Mailbox[T]) enqueue(msg Message[T]) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return ErrMailboxClosed
	}
	// Backpressure boundary: a send is rejected once the queue has
	// already reached high water, not only once it has gone past it -
	// one successful send per slot up to and including high_water,
	// then MailboxFull on the next.
	if mb.count >= mb.config.HighWater {
		return &MailboxFull{Len: mb.count}
	}
	if mb.count >= mb.config.Capacity {
		return &MailboxFull{Len: mb.count}
	}
	idx := (mb.head + mb.count) % mb.config.Capacity
	mb.buf[idx] = msg
	mb.count++
	mb.len.Store(int64(mb.count))
	mb.broadcast()
	return nil
}

func (mb *Mailbox[T]) dequeue() (Message[T], bool) {
	if mb.count == 0 {
		return Message[T]{}, false
	}
	msg := mb.buf[mb.head]
	mb.buf[mb.head] = Message[T]{}
	mb.head = (mb.head + 1) % mb.config.Capacity
	mb.count--
	mb.len.Store(int64(mb.count))
	return msg, true
}

// Send enqueues msg, failing with MailboxFull if the queue is already
// at its high water mark, or ErrMailboxClosed if the mailbox has been
// closed. Only a Sendable capability may be enqueued.
func (mb *Mailbox[T]) Send(msg Message[T]) error {
	if !msg.Cap().Sendable() {
		return ErrNotSendable
	}
	return mb.enqueue(msg)
}

// TrySend is the non-blocking form of Send. Since Send never actually
// blocks (backpressure is checked before the ring buffer write, and
// the write itself never waits), TrySend and Send share an
// implementation.
func (mb *Mailbox[T]) TrySend(msg Message[T]) error {
	return mb.Send(msg)
}

// Recv dequeues the next message, waiting if the queue is empty until
// a message arrives, the mailbox closes, or ctx is done.
func (mb *Mailbox[T]) Recv(ctx context.Context) (Message[T], error) {
	for {
		mb.mu.Lock()
		if msg, ok := mb.dequeue(); ok {
			mb.mu.Unlock()
			return msg, nil
		}
		if mb.closed {
			mb.mu.Unlock()
			return Message[T]{}, ErrMailboxClosed
		}
		waitCh := mb.waitCh
		mb.mu.Unlock()

		select {
		case <-waitCh:
		case <-ctx.Done():
			return Message[T]{}, ctx.Err()
		}
	}
}

// TryRecv dequeues the next message without waiting, returning
// ErrMailboxEmpty if none is available.
func (mb *Mailbox[T]) TryRecv() (Message[T], error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if msg, ok := mb.dequeue(); ok {
		return msg, nil
	}
	if mb.closed {
		return Message[T]{}, ErrMailboxClosed
	}
	return Message[T]{}, ErrMailboxEmpty
}

// closeSender drops one sender reference. Once every outstanding
// sender reference has been dropped, the mailbox closes: pending
// messages remain readable, but Recv/TryRecv return ErrMailboxClosed
// once the queue drains.
func (mb *Mailbox[T]) closeSender() {
	if mb.senders.Add(-1) == 0 {
		mb.mu.Lock()
		mb.closed = true
		mb.broadcast()
		mb.mu.Unlock()
	}
}

// Close marks the mailbox closed directly, regardless of outstanding
// sender references. Used by a receiver that wants to cancel a task by
// dropping its end unconditionally.
func (mb *Mailbox[T]) Close() {
	mb.mu.Lock()
	if !mb.closed {
		mb.closed = true
		mb.broadcast()
	}
	mb.mu.Unlock()
}

// MailboxSender is a cloneable handle for sending into a Mailbox.
type MailboxSender[T any] struct {
	mb *Mailbox[T]
}

// Send enqueues msg through the owning mailbox.
func (s MailboxSender[T]) Send(msg Message[T]) error { return s.mb.Send(msg) }

// TrySend enqueues msg without waiting.
func (s MailboxSender[T]) TrySend(msg Message[T]) error { return s.mb.TrySend(msg) }

// Len returns the owning mailbox's current queue length.
func (s MailboxSender[T]) Len() int { return s.mb.Len() }

// IsHighWater reports whether the owning mailbox is at its high water
// mark.
func (s MailboxSender[T]) IsHighWater() bool { return s.mb.IsHighWater() }

// Close drops this sender's reference to the mailbox.
func (s MailboxSender[T]) Close() { s.mb.closeSender() }

// MailboxReceiver is a cloneable handle for receiving from a Mailbox.
type MailboxReceiver[T any] struct {
	mb *Mailbox[T]
}

// Recv dequeues the next message, waiting as Mailbox.Recv does.
func (r MailboxReceiver[T]) Recv(ctx context.Context) (Message[T], error) { return r.mb.Recv(ctx) }

// TryRecv dequeues without waiting, as Mailbox.TryRecv does.
func (r MailboxReceiver[T]) TryRecv() (Message[T], error) { return r.mb.TryRecv() }

// Close cancels this receiver's mailbox unconditionally.
func (r MailboxReceiver[T]) Close() { r.mb.Close() }
