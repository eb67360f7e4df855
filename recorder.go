package tinylog

import "github.com/coredump-systems/tinylog/internal/flightrecorder"

// Recorder is a lock-free fixed-capacity ring buffer recording a numeric
// value per entry, independent of the record pipeline: a post-mortem
// side-channel a caller can Push into from anywhere without touching a
// Session or the queue. Re-exported so callers never import
// internal/flightrecorder directly.
type Recorder[T flightrecorder.Numeric] = flightrecorder.Recorder[T]

// NewRecorder constructs a Recorder with capacity r (must be a power of
// two) and every slot pre-filled with invalid.
func NewRecorder[T flightrecorder.Numeric](r int, invalid T) *Recorder[T] {
	return flightrecorder.New(r, invalid)
}

// depthRecordingObserver wraps an Observer, additionally pushing every
// queue depth sample into a Recorder so a post-mortem dump can recover
// the most recent depth history even after Metrics' running average has
// smoothed it away.
type depthRecordingObserver struct {
	inner    Observer
	depths   *Recorder[uint32]
}

func newDepthRecordingObserver(inner Observer, capacity int) *depthRecordingObserver {
	return &depthRecordingObserver{
		inner:  inner,
		depths: NewRecorder[uint32](capacity, 0),
	}
}

func (o *depthRecordingObserver) ObserveAtomPushed()      { o.inner.ObserveAtomPushed() }
func (o *depthRecordingObserver) ObserveAtomDropped()     { o.inner.ObserveAtomDropped() }
func (o *depthRecordingObserver) ObserveRecordEmitted()   { o.inner.ObserveRecordEmitted() }
func (o *depthRecordingObserver) ObserveRecordTruncated() { o.inner.ObserveRecordTruncated() }
func (o *depthRecordingObserver) ObserveQueueDepth(depth uint32) {
	o.depths.Push(depth)
	o.inner.ObserveQueueDepth(depth)
}

var _ Observer = (*depthRecordingObserver)(nil)
