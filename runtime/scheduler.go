// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"math/rand"
	stdruntime "runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	mathutil "github.com/leanr-go/leanr/utils/math"
)

// Priority orders tasks within a worker's local queue.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Task is a runnable unit of scheduling: a G in the G-M-P model. Run
// is invoked by exactly one worker goroutine at a time; it must not
// block on anything but a suspension point the runtime itself exposes
// (Mailbox.Recv, an Awaitable, channel send/recv).
type Task struct {
	ID       uint64
	Priority Priority
	AgentID  uint64
	Run      func(ctx context.Context)
}

// localQueue is a single worker's bounded FIFO deque plus an optional
// LIFO "next" slot for hot continuations (submit-and-continue-here
// patterns). Guarded by its own mutex; steal() is called by other
// worker goroutines so the lock also protects against concurrent
// theft.
type localQueue struct {
	mu    sync.Mutex
	next  *Task
	tasks []*Task // FIFO, front at index 0
}

const localQueueCapacity = 256

func (q *localQueue) push(t *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) >= localQueueCapacity {
		return false
	}
	q.tasks = append(q.tasks, t)
	return true
}

func (q *localQueue) pushNext(t *Task) *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev := q.next
	q.next = t
	return prev
}

func (q *localQueue) popLocal() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next != nil {
		t := q.next
		q.next = nil
		return t
	}
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t
}

// steal removes roughly half of this queue's FIFO tasks (the LIFO
// slot is never stolen) and returns them to the caller; the first is
// the task to run immediately, the rest are appended to the thief's
// own queue.
func (q *localQueue) steal() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.tasks)
	if n == 0 {
		return nil
	}
	half := mathutil.Max((n+1)/2, 1)
	stolen := make([]*Task, half)
	copy(stolen, q.tasks[:half])
	q.tasks = q.tasks[half:]
	return stolen
}

func (q *localQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.tasks)
	if q.next != nil {
		n++
	}
	return n
}

// Scheduler is a G-M-P work-stealing scheduler: one OS-thread-backed
// goroutine per worker (M), each draining its own bounded local queue
// (P), with a global injector for overflow and off-worker submissions
// and randomized work stealing among peers when a worker runs dry.
type Scheduler struct {
	workers []*localQueue
	global  chan *Task

	running   atomic.Bool
	taskIDs   atomic.Uint64
	profiles  *profileTable
	metrics   *Metrics
	cancel    context.CancelFunc
	group     *errgroup.Group
	groupDone chan struct{}
}

// NewScheduler creates a scheduler with the given worker count. A
// count <= 0 defaults to runtime.GOMAXPROCS(0), one worker per logical
// core.
func NewScheduler(workerCount int, metrics *Metrics) *Scheduler {
	if workerCount <= 0 {
		workerCount = stdruntime.GOMAXPROCS(0)
	}
	workers := make([]*localQueue, workerCount)
	for i := range workers {
		workers[i] = &localQueue{}
	}
	return &Scheduler{
		workers:  workers,
		global:   make(chan *Task, workerCount*localQueueCapacity),
		profiles: newProfileTable(),
		metrics:  metrics,
	}
}

// Start launches one goroutine per worker. Calling Start on an
// already-running scheduler is a no-op.
func (s *Scheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	s.group = g
	for id := range s.workers {
		workerID := id
		g.Go(func() error {
			s.workerLoop(gctx, workerID)
			return nil
		})
	}
}

// Stop signals every worker to return and waits for them to join.
// Tasks still sitting in queues when Stop is called are dropped: the
// scheduler contract offers no forced-cancellation guarantee beyond
// "workers observe the flag and return".
func (s *Scheduler) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.cancel()
	return s.group.Wait()
}

// IsRunning reports whether the scheduler is currently dispatching.
func (s *Scheduler) IsRunning() bool { return s.running.Load() }

// Submit pushes a new task at Normal priority onto a randomly chosen
// worker's local queue, spilling to the global injector if that
// worker's queue is full.
func (s *Scheduler) Submit(run func(ctx context.Context)) uint64 {
	return s.SubmitWithPriority(run, PriorityNormal)
}

// SubmitWithPriority is Submit with an explicit priority.
func (s *Scheduler) SubmitWithPriority(run func(ctx context.Context), priority Priority) uint64 {
	id := s.taskIDs.Add(1)
	task := &Task{ID: id, Priority: priority, Run: run}
	s.dispatch(task)
	return id
}

// SubmitForAgent is Submit with the task attributed to agentID, so its
// execution time feeds that agent's profile.
func (s *Scheduler) SubmitForAgent(agentID uint64, run func(ctx context.Context)) uint64 {
	id := s.taskIDs.Add(1)
	task := &Task{ID: id, Priority: PriorityNormal, AgentID: agentID, Run: run}
	s.dispatch(task)
	return id
}

// SubmitAndContinue places task in the calling worker's LIFO "next"
// slot, for submit-and-continue-here patterns where the new task
// should run before anything already queued.
func (s *Scheduler) SubmitAndContinue(workerID int, run func(ctx context.Context)) uint64 {
	id := s.taskIDs.Add(1)
	task := &Task{ID: id, Priority: PriorityNormal, Run: run}
	if workerID < 0 || workerID >= len(s.workers) {
		s.dispatch(task)
		return id
	}
	if overflow := s.workers[workerID].pushNext(task); overflow != nil {
		s.dispatch(overflow)
	}
	return id
}

func (s *Scheduler) dispatch(task *Task) {
	workerID := rand.Intn(len(s.workers))
	if s.workers[workerID].push(task) {
		return
	}
	select {
	case s.global <- task:
	default:
		// Global injector is also full; block until a slot frees. This
		// only happens under sustained overload across every worker and
		// the injector at once.
		s.global <- task
	}
}

// UpdateProfile records a fresh service-time sample for agentID in the
// scheduler's profile table. stealWork does not consult the table.
func (s *Scheduler) UpdateProfile(agentID uint64, execTime time.Duration) {
	s.profiles.update(agentID, execTime)
}

// QueueDepths returns each worker's current local queue length, for
// monitoring.
func (s *Scheduler) QueueDepths() []int {
	depths := make([]int, len(s.workers))
	for i, w := range s.workers {
		depths[i] = w.len()
	}
	return depths
}

const checkGlobalInterval = 61 // prime, for distribution across workers' phase

func (s *Scheduler) workerLoop(ctx context.Context, workerID int) {
	own := s.workers[workerID]
	var checkGlobal uint32

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if task := own.popLocal(); task != nil {
			s.run(ctx, task)
			continue
		}

		checkGlobal++
		if checkGlobal%checkGlobalInterval == 0 {
			select {
			case task := <-s.global:
				s.run(ctx, task)
				continue
			default:
			}
		}

		if task := s.stealWork(workerID); task != nil {
			s.run(ctx, task)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case task := <-s.global:
			s.run(ctx, task)
		case <-time.After(100 * time.Microsecond):
		}
	}
}

func (s *Scheduler) run(ctx context.Context, task *Task) {
	start := time.Now()
	task.Run(ctx)
	if s.metrics != nil {
		s.metrics.RecordTaskExecuted()
	}
	if task.AgentID != 0 {
		s.UpdateProfile(task.AgentID, time.Since(start))
	}
}

// stealWork picks a random victim != workerID and steals roughly half
// its queue, trying up to len(workers)/2 victims before giving up.
// Ties among empty-handed attempts are broken by preferring, among the
// victims tried, none in particular -- victim order itself is already
// randomized; the stolen batch's owner is whichever victim yields
// first.
func (s *Scheduler) stealWork(workerID int) *Task {
	n := len(s.workers)
	if n <= 1 {
		return nil
	}
	attempts := mathutil.Max(n/2, 1)
	for i := 0; i < attempts; i++ {
		victim := rand.Intn(n)
		if victim == workerID {
			continue
		}
		stolen := s.workers[victim].steal()
		if len(stolen) == 0 {
			continue
		}
		head := stolen[0]
		for _, t := range stolen[1:] {
			s.workers[workerID].push(t)
		}
		return head
	}
	return nil
}
