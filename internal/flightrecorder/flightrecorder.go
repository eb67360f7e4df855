// Package flightrecorder implements the atomic ring buffer side-channel:
// a lock-free fixed-size array recording a numeric value per entry for
// post-mortem inspection, independent of the main producer/worker
// pipeline.
package flightrecorder

import (
	"sync/atomic"
)

// Numeric is the set of fixed-width integral types the ring buffer can
// hold; each has a native atomic store width on every target this module
// cares about, so no individual element ever tears.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Recorder is a lock-free ring buffer of capacity R, synchronized purely
// through a single atomic counter. Concurrent writers do not coordinate
// with each other beyond the atomic increment, so two writes racing for
// the same slot are possible under overload; this mirrors the "no
// synchronization beyond atomic next" contract and is acceptable for a
// flight recorder whose purpose is best-effort post-mortem capture, not
// an exactly-once log.
type Recorder[T Numeric] struct {
	buf  []T
	mask uint64
	next atomic.Uint64
}

// New constructs a Recorder with capacity r, which must be a power of two
// so indexing can use a mask instead of a modulo.
func New[T Numeric](r int, invalid T) *Recorder[T] {
	if r <= 0 || r&(r-1) != 0 {
		panic("flightrecorder: capacity must be a power of two")
	}
	rec := &Recorder[T]{
		buf:  make([]T, r),
		mask: uint64(r - 1),
	}
	rec.Invalidate(invalid)
	return rec
}

// Push records v at the next slot, overwriting the oldest entry once the
// buffer wraps.
func (r *Recorder[T]) Push(v T) {
	idx := r.next.Add(1) - 1
	r.buf[idx&r.mask] = v
}

// Snapshot returns a linearized copy of the buffer's current contents,
// oldest entry first, rotated so that entry r.buf[next mod R] starts the
// result (the oldest element still present once the buffer has wrapped).
func (r *Recorder[T]) Snapshot() []T {
	next := r.next.Load()
	n := len(r.buf)
	offset := int(next % uint64(n))

	out := make([]T, n)
	copy(out, r.buf[offset:])
	copy(out[n-offset:], r.buf[:offset])
	return out
}

// Invalidate fills every slot with sentinel, used at construction and
// whenever the recorder needs a known-clean state.
func (r *Recorder[T]) Invalidate(sentinel T) {
	for i := range r.buf {
		r.buf[i] = sentinel
	}
}
