package tinylog

import (
	"time"

	"github.com/coredump-systems/tinylog/internal/constants"
	"github.com/coredump-systems/tinylog/internal/queue"
	"github.com/coredump-systems/tinylog/internal/wire"
)

// TaskRepr selects how a record's task is rendered in its header field.
type TaskRepr int

const (
	TaskReprNone TaskRepr = iota
	TaskReprID
	TaskReprName
)

// BlockingPolicy re-exports internal/queue's policy enum for the public
// configuration surface (spec.md §6, blocking_policy ∈ {block, drop}).
type BlockingPolicy = queue.BlockingPolicy

const (
	Drop  = queue.Drop
	Block = queue.Block
)

// Config carries the compile-time-flavored configuration surface of
// spec.md §6. Most fields size internal tables or queues at Init time;
// N_tasks, N_topics, Q, C, and RefreshPeriod are the only ones a given
// process actually varies at runtime, since P (the atom payload width) is
// a true compile-time constant baked into wire.Unit.
type Config struct {
	// NumTasks is N_tasks: the task registry's capacity.
	NumTasks int

	// NumTopics is N_topics: the topic registry's capacity.
	NumTopics int

	// QueueCapacity is Q: the bounded message queue's depth. Ignored when
	// Direct is true.
	QueueCapacity int

	// CircularCapacity is C: the transmitter worker's reassembly
	// side-buffer depth. Ignored when Direct is true.
	CircularCapacity int

	// TransmitBufferSize sizes the worker's rendering window.
	TransmitBufferSize int

	// RefreshPeriod bounds how long a partially filled transmit buffer
	// waits for more atoms before the worker flushes it anyway.
	RefreshPeriod time.Duration

	// EndOfLine is the byte written to terminate every record.
	EndOfLine byte

	// AllowISR permits begin() calls from interrupt context to produce a
	// live session instead of a null one.
	AllowISR bool

	// Direct selects the "void queue" configuration (spec.md §4.4): the
	// producer serializes straight into the converter on the calling
	// goroutine, with no queue or worker goroutine at all.
	Direct bool

	// BlockingPolicy selects Queue's behavior when full. Ignored when
	// Direct is true.
	BlockingPolicy BlockingPolicy

	// BoundedWait is the adapter's short bounded wait a Block-policy
	// Push may spend looking for room before falling back to Drop.
	BoundedWait time.Duration

	// Support64Bit and SupportFloat gate the corresponding Push
	// overloads, mirroring a compile-time capability flag on a target
	// that can't afford 64-bit arithmetic or a float unit. When false,
	// Push silently drops values of the disabled width/kind instead of
	// emitting an atom.
	Support64Bit bool
	SupportFloat bool

	// AppendBasePrefix and AlignSigned are the converter's rendering
	// flags (spec.md §4.6: optional 0b/0x prefix, optional leading space
	// for non-negative aligned values).
	AppendBasePrefix bool
	AlignSigned      bool

	// TaskRepr selects how a record's task is rendered in its header.
	TaskRepr TaskRepr

	// MinLevel is the compile-time-flavored minimum severity: begin()
	// calls below this level return a null session. This is the only
	// level-based filtering the package performs.
	MinLevel Level

	// WorkerCPUAffinity pins the transmitter worker goroutine to a CPU
	// index via the hosted adapter's SchedSetaffinity. -1 leaves
	// scheduling to the Go runtime.
	WorkerCPUAffinity int
}

// DefaultConfig returns a Config matching the defaults named throughout
// internal/constants, suitable for most hosted deployments.
func DefaultConfig() Config {
	return Config{
		NumTasks:           constants.DefaultNumTasks,
		NumTopics:          constants.DefaultNumTopics,
		QueueCapacity:      constants.DefaultQueueCapacity,
		CircularCapacity:   constants.DefaultCircularCapacity,
		TransmitBufferSize: constants.DefaultTransmitBufferSize,
		RefreshPeriod:      constants.DefaultRefreshPeriod,
		EndOfLine:          constants.EndOfLine,
		AllowISR:           false,
		Direct:             false,
		BlockingPolicy:     Drop,
		BoundedWait:        constants.DefaultPollInterval,
		Support64Bit:       true,
		SupportFloat:       true,
		AppendBasePrefix:   false,
		AlignSigned:        false,
		TaskRepr:           TaskReprName,
		MinLevel:           LevelDebug,
		WorkerCPUAffinity:  -1,
	}
}

// PayloadSize is P, the fixed per-atom payload width. Unlike every other
// Config field, this is a true compile-time constant (it sizes
// wire.Unit's backing array) and cannot be varied per Config value.
const PayloadSize = wire.PayloadSize
