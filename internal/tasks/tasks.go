// Package tasks implements the dense task registry: a bounded mapping from
// platform task handles to a compact 1-byte TaskID, with monotonic
// allocation, free-list reuse on unregister, and wait-free name lookup.
package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/coredump-systems/tinylog/internal/platform"
)

// TaskID is the dense 1-byte task identifier used throughout the pipeline.
type TaskID uint8

const (
	// Invalid marks "discard" / "no task" / an unregistered caller.
	Invalid TaskID = 0

	// ISR is the reserved pseudo-task for records logged from interrupt
	// context. It is never shared with any normal task's builder slot.
	ISR TaskID = 255
)

// ErrOutOfTaskIds is returned by Register when the free list is exhausted.
var ErrOutOfTaskIds = errors.New("tasks: out of task ids")

// Registry maps platform task handles to dense TaskIDs. Registration is
// serialized by a mutex; NameOf reads are wait-free via an atomic pointer
// table, matching the "monotonic append-only mapping" reader contract.
type Registry struct {
	mu       sync.Mutex
	capacity int
	next     TaskID
	free     []TaskID
	byHandle map[platform.TaskHandle]TaskID
	names    []atomic.Pointer[string]
}

// NewRegistry constructs a Registry with room for capacity tasks, numbered
// 1..capacity (0 and 255 are reserved).
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	if capacity > 254 {
		capacity = 254
	}
	return &Registry{
		capacity: capacity,
		next:     1,
		byHandle: make(map[platform.TaskHandle]TaskID, capacity),
		names:    make([]atomic.Pointer[string], capacity+1),
	}
}

// Register assigns a dense TaskID to handle, or returns the existing one if
// handle was already registered. name may be empty.
func (r *Registry) Register(handle platform.TaskHandle, name string) (TaskID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byHandle[handle]; ok {
		return id, nil
	}

	var id TaskID
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else if int(r.next) <= r.capacity {
		id = r.next
		r.next++
	} else {
		return Invalid, ErrOutOfTaskIds
	}

	r.byHandle[handle] = id
	n := name
	r.names[id].Store(&n)
	return id, nil
}

// Unregister releases id back to the free pool and drops its handle
// mapping. Unregistering an id that was never registered is a no-op.
func (r *Registry) Unregister(handle platform.TaskHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byHandle[handle]
	if !ok {
		return
	}
	delete(r.byHandle, handle)
	r.names[id].Store(nil)
	r.free = append(r.free, id)
}

// LookupHandle returns the TaskID registered for handle, or Invalid if the
// handle was never registered. This is the only way a hosted Registry can
// answer "current task": see the context-based Bind/Current helpers below,
// since the Go runtime has no supported equivalent of thread_local lookup
// by handle alone.
func (r *Registry) LookupHandle(handle platform.TaskHandle) TaskID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byHandle[handle]
}

// NameOf returns the name registered for id, or the empty string if id is
// unregistered or out of range. Wait-free: backed by an atomic pointer
// table, never touches the registration mutex.
func (r *Registry) NameOf(id TaskID) string {
	if int(id) >= len(r.names) {
		return ""
	}
	p := r.names[id].Load()
	if p == nil {
		return ""
	}
	return *p
}

type bindKey struct{}

// Bind returns a context carrying id as the "current task" for any
// downstream call that uses Current. Go has no native thread-local
// storage, so unlike the original's thread_local/RTOS-TCB current-task
// lookup, this module requires the producer to thread a bound context
// through to Logger.Begin once per goroutine (see tinylog.Bind).
func Bind(ctx context.Context, id TaskID) context.Context {
	return context.WithValue(ctx, bindKey{}, id)
}

// Current returns the TaskID bound to ctx via Bind, or Invalid if ctx
// carries no binding (or is nil), matching "current returns INVALID from
// an unregistered thread".
func Current(ctx context.Context) TaskID {
	if ctx == nil {
		return Invalid
	}
	id, ok := ctx.Value(bindKey{}).(TaskID)
	if !ok {
		return Invalid
	}
	return id
}
