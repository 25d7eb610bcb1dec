// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/leanr-go/leanr/utils"
)

var agentIDCounter atomic.Uint64

func allocateAgentID() uint64 { return agentIDCounter.Add(1) }

// AgentRef is a cloneable handle to a running agent: an id plus the
// sender half of its mailbox. It carries no reference to the agent's
// own state, only the means to reach it.
type AgentRef[T any] struct {
	id     uint64
	sender MailboxSender[T]
}

// NewAgentRef wraps an id and sender into an AgentRef.
func NewAgentRef[T any](id uint64, sender MailboxSender[T]) AgentRef[T] {
	return AgentRef[T]{id: id, sender: sender}
}

// ID returns the agent's identity.
func (a AgentRef[T]) ID() uint64 { return a.id }

// Send delivers msg to the agent's mailbox.
func (a AgentRef[T]) Send(msg Message[T]) error { return a.sender.Send(msg) }

// Spawn starts behavior as a new agent task on s, giving it a fresh
// default-configured mailbox, and returns a reference to it. behavior
// owns the mailbox receiver end for its entire lifetime; it is
// responsible for returning once its mailbox closes.
func Spawn[T any](s *Scheduler, behavior func(ctx context.Context, mb *Mailbox[T])) AgentRef[T] {
	id := allocateAgentID()
	mb := NewDefaultMailbox[T]()
	sender := mb.Sender()
	s.SubmitForAgent(id, func(ctx context.Context) {
		behavior(ctx, mb)
	})
	return NewAgentRef[T](id, sender)
}

// Signal sends msg to agent. It is a thin free function wrapping
// AgentRef.Send, kept distinct so call sites read as "signal the
// agent" rather than "call a method on a handle".
func Signal[T any](agent AgentRef[T], msg Message[T]) error {
	return agent.Send(msg)
}

// Awaitable is a single-value future: the producer side sends exactly
// once (and may then close, though Await does not require it) and the
// consumer side blocks in Await until a value arrives, the channel is
// closed without a value, or ctx is done.
type Awaitable[T any] struct {
	ch <-chan T
}

// AwaitFuture creates a fulfil/await pair. The returned channel should
// receive exactly one value; closing it without sending resolves the
// Awaitable with ErrAwaitCancelled.
func AwaitFuture[T any]() (chan<- T, Awaitable[T]) {
	ch := make(chan T, 1)
	return ch, Awaitable[T]{ch: ch}
}

// Await blocks until the future resolves or ctx is done.
func (a Awaitable[T]) Await(ctx context.Context) (T, error) {
	select {
	case v, ok := <-a.ch:
		if !ok {
			return utils.Zero[T](), ErrAwaitCancelled
		}
		return v, nil
	case <-ctx.Done():
		return utils.Zero[T](), ctx.Err()
	}
}

// ChannelSender is the send half of a bounded MPMC channel, independent
// of Mailbox and its capability tracking: a plain point-to-point (or
// many-to-many) pipe for values that never need reference-capability
// enforcement.
type ChannelSender[T any] struct {
	ch     chan T
	closed *atomic.Bool
}

// ChannelReceiver is the receive half of a bounded MPMC channel.
type ChannelReceiver[T any] struct {
	ch     chan T
	closed *atomic.Bool
}

// NewChannelPair creates a bounded channel of the given capacity and
// returns its sender and receiver halves.
func NewChannelPair[T any](capacity int) (ChannelSender[T], ChannelReceiver[T]) {
	ch := make(chan T, capacity)
	closed := &atomic.Bool{}
	return ChannelSender[T]{ch: ch, closed: closed}, ChannelReceiver[T]{ch: ch, closed: closed}
}

// Send enqueues value, blocking until there is room or ctx is done.
func (s ChannelSender[T]) Send(ctx context.Context, value T) error {
	if s.closed.Load() {
		return ErrChannelClosed
	}
	select {
	case s.ch <- value:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel. Further sends return ErrChannelClosed;
// values already enqueued remain receivable.
func (s ChannelSender[T]) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// Recv dequeues the next value, blocking until one arrives, the
// channel closes, or ctx is done.
func (r ChannelReceiver[T]) Recv(ctx context.Context) (T, error) {
	select {
	case v, ok := <-r.ch:
		if !ok {
			return utils.Zero[T](), ErrChannelClosed
		}
		return v, nil
	case <-ctx.Done():
		return utils.Zero[T](), ctx.Err()
	}
}

// Quorum fans buildRequest out to every agent in agents and collects
// responses until threshold of them have replied or timeout elapses.
// Each agent's request is built by buildRequest, which is handed a
// respond callback to call (from within the agent's own behavior) with
// its typed reply; Quorum threads that callback through to the actual
// collected response slice, rather than only counting completion
// signals and discarding what was sent back.
func Quorum[Req, Resp any](ctx context.Context, agents []AgentRef[Req], threshold int, timeout time.Duration, buildRequest func(respond func(Resp)) Req) ([]Resp, error) {
	if threshold > len(agents) {
		return nil, &QuorumNotReached{Received: 0, Required: threshold}
	}
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}

	results := make(chan Resp, len(agents))
	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, agent := range agents {
		agent := agent
		respond := func(r Resp) {
			select {
			case results <- r:
			default:
			}
		}
		req := buildRequest(respond)
		go func() {
			_ = agent.Send(NewMessage(req, Iso))
		}()
	}

	responses := make([]Resp, 0, threshold)
	for len(responses) < threshold {
		select {
		case r := <-results:
			responses = append(responses, r)
		case <-deadline.Done():
			return responses, &QuorumNotReached{Received: len(responses), Required: threshold}
		}
	}
	return responses, nil
}

// Shard picks the agent responsible for key via a deterministic hash,
// so the same key always routes to the same shard for the lifetime of
// the shards slice.
func Shard[T any](key []byte, shards []AgentRef[T]) (AgentRef[T], error) {
	if len(shards) == 0 {
		return AgentRef[T]{}, ErrNoAgents
	}
	h := xxhash.Sum64(key)
	idx := h % uint64(len(shards))
	return shards[idx], nil
}

// lease is one held resource lease: who holds it and when it expires.
type lease struct {
	holder  uint64
	expires time.Time
}

// LeaseManager hands out TTL-bound, mutually exclusive leases over
// named resources. An expired lease is reclaimed lazily, on the next
// Acquire attempt against its resource, rather than by a background
// sweep.
type LeaseManager struct {
	mu     sync.Mutex
	leases map[string]lease
}

// NewLeaseManager creates an empty lease manager.
func NewLeaseManager() *LeaseManager {
	return &LeaseManager{leases: make(map[string]lease)}
}

// Acquire grants a new lease over resource for ttl, failing if the
// resource is already leased and that lease has not yet expired.
func (m *LeaseManager) Acquire(resource string, ttl time.Duration) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.leases[resource]; ok && existing.expires.After(now) {
		return 0, &LeaseAcquisitionFailed{Reason: "resource " + resource + " already leased"}
	}

	holder := allocateAgentID()
	m.leases[resource] = lease{holder: holder, expires: now.Add(ttl)}
	return holder, nil
}

// Release drops holder's lease over resource. Releasing a resource
// that is not currently leased, or that holder does not hold, the
// latter is an error; the former is not, since it may simply have
// already expired.
func (m *LeaseManager) Release(resource string, holder uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.leases[resource]
	if !ok {
		return nil
	}
	if existing.holder != holder {
		return &LeaseAcquisitionFailed{Reason: "caller does not hold the lease on " + resource}
	}
	delete(m.leases, resource)
	return nil
}

// Broadcast sends msg to a random sample of fanout agents drawn
// without replacement from agents (fanout is clamped to len(agents)).
func Broadcast[T any](ctx context.Context, agents []AgentRef[T], msg Message[T], fanout int) error {
	if fanout > len(agents) {
		fanout = len(agents)
	}
	indices := rand.Perm(len(agents))[:fanout]
	for _, idx := range indices {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := agents[idx].Send(msg); err != nil {
			return err
		}
	}
	return nil
}
