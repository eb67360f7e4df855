package tinylog

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational statistics for one Logger instance: atoms
// produced and dropped, records finalized and truncated, and queue depth
// samples, mirroring the counters the teacher's block-device Metrics
// tracked for I/O operations, generalized from reads/writes to atoms/records.
type Metrics struct {
	AtomsPushed      atomic.Uint64
	AtomsDropped     atomic.Uint64
	RecordsEmitted   atomic.Uint64
	RecordsTruncated atomic.Uint64

	QueueDepthTotal atomic.Uint64
	QueueDepthCount atomic.Uint64
	MaxQueueDepth   atomic.Uint32

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a zeroed Metrics with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordAtomPushed records one atom successfully enqueued.
func (m *Metrics) RecordAtomPushed() {
	m.AtomsPushed.Add(1)
}

// RecordAtomDropped records one atom discarded (queue-full drop, or an
// INVALID-task atom purged by the worker).
func (m *Metrics) RecordAtomDropped() {
	m.AtomsDropped.Add(1)
}

// RecordRecordEmitted records one fully terminated record reaching the sink.
func (m *Metrics) RecordRecordEmitted() {
	m.RecordsEmitted.Add(1)
}

// RecordRecordTruncated records one record yielded or flushed without
// reaching its terminal atom.
func (m *Metrics) RecordRecordTruncated() {
	m.RecordsTruncated.Add(1)
}

// RecordQueueDepth records a queue depth sample, updating the running
// average inputs and the observed maximum.
func (m *Metrics) RecordQueueDepth(depth uint32) {
	m.QueueDepthTotal.Add(uint64(depth))
	m.QueueDepthCount.Add(1)
	for {
		current := m.MaxQueueDepth.Load()
		if depth <= current {
			break
		}
		if m.MaxQueueDepth.CompareAndSwap(current, depth) {
			break
		}
	}
}

// Stop marks the logger as stopped for uptime accounting.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of Metrics' counters plus derived
// statistics.
type MetricsSnapshot struct {
	AtomsPushed      uint64
	AtomsDropped     uint64
	RecordsEmitted   uint64
	RecordsTruncated uint64

	AvgQueueDepth float64
	MaxQueueDepth uint32

	UptimeNs uint64
}

// Snapshot returns a point-in-time MetricsSnapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		AtomsPushed:      m.AtomsPushed.Load(),
		AtomsDropped:     m.AtomsDropped.Load(),
		RecordsEmitted:   m.RecordsEmitted.Load(),
		RecordsTruncated: m.RecordsTruncated.Load(),
		MaxQueueDepth:    m.MaxQueueDepth.Load(),
	}

	if count := m.QueueDepthCount.Load(); count > 0 {
		snap.AvgQueueDepth = float64(m.QueueDepthTotal.Load()) / float64(count)
	}

	start := m.StartTime.Load()
	if stop := m.StopTime.Load(); stop > 0 {
		snap.UptimeNs = uint64(stop - start)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - start)
	}

	return snap
}

// Observer allows pluggable metrics collection, mirroring the teacher's
// Observer interface generalized from I/O events to pipeline events.
type Observer interface {
	ObserveAtomPushed()
	ObserveAtomDropped()
	ObserveRecordEmitted()
	ObserveRecordTruncated()
	ObserveQueueDepth(depth uint32)
}

// NoOpObserver discards every observation.
type NoOpObserver struct{}

func (NoOpObserver) ObserveAtomPushed()          {}
func (NoOpObserver) ObserveAtomDropped()         {}
func (NoOpObserver) ObserveRecordEmitted()       {}
func (NoOpObserver) ObserveRecordTruncated()     {}
func (NoOpObserver) ObserveQueueDepth(uint32)    {}

// MetricsObserver implements Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver constructs an observer backed by m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveAtomPushed()      { o.metrics.RecordAtomPushed() }
func (o *MetricsObserver) ObserveAtomDropped()     { o.metrics.RecordAtomDropped() }
func (o *MetricsObserver) ObserveRecordEmitted()   { o.metrics.RecordRecordEmitted() }
func (o *MetricsObserver) ObserveRecordTruncated() { o.metrics.RecordRecordTruncated() }
func (o *MetricsObserver) ObserveQueueDepth(depth uint32) {
	o.metrics.RecordQueueDepth(depth)
}

var (
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = NoOpObserver{}
)
