// Package queue implements the bounded inter-task message queue and the
// void (direct/synchronous) variant used when no queue is wanted at all.
package queue

import (
	"sync"
	"time"

	"github.com/coredump-systems/tinylog/internal/wire"
)

// BlockingPolicy selects what Push does when the queue is full.
type BlockingPolicy int

const (
	// Drop discards the newest unit immediately when the queue is full.
	Drop BlockingPolicy = iota

	// Block waits up to the queue's configured bounded wait for room,
	// then falls back to Drop's behavior. A producer never blocks longer
	// than that short bounded wait, regardless of policy.
	Block
)

// Queue is the bounded MPSC carrying wire.Unit values from producers to
// the transmitter worker. Ordering is preserved within one producer and
// FIFO across all producers; there are no priority lanes.
type Queue struct {
	mu           sync.Mutex
	notEmpty     *sync.Cond
	notFull      *sync.Cond
	buf          []wire.Unit
	head, tail   int
	count        int
	policy       BlockingPolicy
	boundedWait  time.Duration
}

// New constructs a Queue with the given capacity and blocking policy.
// boundedWait is the adapter's short bounded wait a Block-policy Push may
// spend looking for room before giving up and dropping anyway.
func New(capacity int, policy BlockingPolicy, boundedWait time.Duration) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{
		buf:         make([]wire.Unit, capacity),
		policy:      policy,
		boundedWait: boundedWait,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Push enqueues u, returning false if it was dropped because the queue
// was full (and stayed full through the bounded wait, in Block mode).
func (q *Queue) Push(u wire.Unit) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.buf) {
		if q.policy == Drop {
			return false
		}
		if !q.waitNotFullLocked(q.boundedWait) {
			return false
		}
	}

	q.buf[q.tail] = u
	q.tail = (q.tail + 1) % len(q.buf)
	q.count++
	q.notEmpty.Signal()
	return true
}

// Pop blocks up to timeout for a unit to become available, used only by
// the transmitter worker.
func (q *Queue) Pop(timeout time.Duration) (wire.Unit, bool) {
	deadline := time.Now().Add(timeout)
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return wire.Unit{}, false
		}
		q.waitNotEmptyLocked(remaining)
	}
	return q.popLocked(), true
}

// PeekTaskID returns the TaskID of the unit at the queue head without
// removing it, and false if the queue is empty.
func (q *Queue) PeekTaskID() (uint8, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return 0, false
	}
	return q.buf[q.head].TaskID, true
}

// PopIfTask removes and returns the head unit only if its TaskID equals
// taskID, used by the worker to consume a matching atom from the queue
// head without disturbing units belonging to other tasks.
func (q *Queue) PopIfTask(taskID uint8) (wire.Unit, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 || q.buf[q.head].TaskID != taskID {
		return wire.Unit{}, false
	}
	return q.popLocked(), true
}

// PopAny removes and returns the head unit regardless of task, or false
// if the queue is empty. Used by the worker when no active task is set
// and the circular reassembly buffer is also empty.
func (q *Queue) PopAny() (wire.Unit, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return wire.Unit{}, false
	}
	return q.popLocked(), true
}

// Len reports the number of units currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

func (q *Queue) popLocked() wire.Unit {
	u := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.notFull.Signal()
	return u
}

// waitNotEmptyLocked waits up to d for a unit to appear. Called with q.mu
// held; returns with q.mu held.
func (q *Queue) waitNotEmptyLocked(d time.Duration) {
	timer := time.AfterFunc(d, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()
	q.notEmpty.Wait()
}

// waitNotFullLocked waits up to d for room to free up, returning true if
// room appeared before the deadline. Called with q.mu held; returns with
// q.mu held.
func (q *Queue) waitNotFullLocked(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for q.count == len(q.buf) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.AfterFunc(remaining, func() {
			q.mu.Lock()
			q.notFull.Broadcast()
			q.mu.Unlock()
		})
		q.notFull.Wait()
		timer.Stop()
	}
	return true
}
