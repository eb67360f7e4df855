// Package constants holds the defaults that size every other package: task
// and topic table capacity, atom payload width, queue and circular-buffer
// depth, and the worker's refresh cadence.
package constants

import "time"

// Default configuration constants
const (
	// DefaultNumTasks is the default task registry capacity (N_tasks).
	DefaultNumTasks = 64

	// DefaultNumTopics is the default topic registry capacity (N_topics).
	DefaultNumTopics = 32

	// DefaultPayloadSize is the default per-atom payload width in bytes (P).
	// Wide enough to hold a uint64, float64, or pointer, or a short inline
	// string chunk.
	DefaultPayloadSize = 8

	// DefaultQueueCapacity is the default bounded MPSC queue depth (Q),
	// expressed as a count of fixed-size message units.
	DefaultQueueCapacity = 1024

	// DefaultCircularCapacity is the default reassembly side-buffer depth
	// (C) the transmitter worker uses to hold aside atoms belonging to a
	// task other than the one currently being interleaved.
	DefaultCircularCapacity = 64

	// DefaultTransmitBufferSize is the size in bytes of the worker's single
	// transmit buffer, into which one record is rendered.
	DefaultTransmitBufferSize = 4096
)

// Timing constants for the worker's refresh cadence.
//
// A record assembled by a producer sits in the queue until its owning task
// becomes the worker's active task, or until the terminal atom (sequence 0)
// arrives and closes it out. RefreshPeriod bounds how long the bytes of a
// partially rendered record can sit in the transmit buffer before the
// worker flushes them; the record itself stays open for its remaining
// atoms.
const (
	// DefaultRefreshPeriod is how long the worker waits with a partially
	// filled transmit buffer before flushing it regardless of whether more
	// atoms for the active task have arrived.
	DefaultRefreshPeriod = 50 * time.Millisecond

	// DefaultPollInterval is the default Config.BoundedWait: how long a
	// producer under the Block policy waits for queue room before the atom
	// is dropped.
	DefaultPollInterval = 5 * time.Millisecond
)

// Wire format constants (spec.md §6).
const (
	// FieldSeparator delimits rendered fields within a record.
	FieldSeparator = ' '

	// EndOfLine terminates a rendered record.
	EndOfLine = '\n'
)

// MaxRegistryCapacity is the hard ceiling on the topic table: topics are a
// single signed byte (spec.md §3), so at most 127. Registry capacities are
// clamped at construction time; tasks are an unsigned byte and the task
// registry clamps to 254 instead.
const MaxRegistryCapacity = 127
