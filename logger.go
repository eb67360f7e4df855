// Package tinylog is a high-throughput structured logging pipeline for
// multi-threaded and embedded targets: producers assemble records through
// a lightweight streaming session, a single transmitter worker reassembles
// per-task interleaving, and a pluggable converter/sink pair renders the
// result without reflection or per-call heap allocation.
package tinylog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/coredump-systems/tinylog/internal/convert"
	"github.com/coredump-systems/tinylog/internal/platform"
	"github.com/coredump-systems/tinylog/internal/queue"
	"github.com/coredump-systems/tinylog/internal/session"
	"github.com/coredump-systems/tinylog/internal/sink"
	"github.com/coredump-systems/tinylog/internal/tasks"
	"github.com/coredump-systems/tinylog/internal/topics"
	"github.com/coredump-systems/tinylog/internal/wire"
	"github.com/coredump-systems/tinylog/internal/worker"
)

// Session is the producer-facing record builder, re-exported at the root
// package so callers never import internal/session directly.
type Session = session.Session

// TaskID and Topic are re-exported so callers never import internal/tasks
// or internal/topics directly for these simple value types.
type TaskID = tasks.TaskID
type Topic = topics.Topic

// InvalidTask, ISRTask, and InvalidTopic re-export the sentinel values a
// caller needs without importing internal/tasks or internal/topics.
const (
	InvalidTask  = tasks.Invalid
	ISRTask      = tasks.ISR
	InvalidTopic = topics.Invalid
)

// Logger is one initialized instance of the pipeline: its registries,
// queue (or void queue), transmitter worker, sink, and metrics. Mirrors
// the teacher's Device: constructed by Init, torn down by Done.
type Logger struct {
	config  Config
	adapter platform.Adapter

	taskRegistry  *tasks.Registry
	topicRegistry *topics.Registry
	arena         *session.Arena

	q      *queue.Queue
	direct *directPipe
	w      *worker.Worker

	sink     sink.Sink
	metrics  *Metrics
	observer *depthRecordingObserver

	doneOnce sync.Once
}

// Init constructs and starts a Logger: registries sized per config, a
// bounded queue (or a void queue in Direct mode) feeding a transmitter
// worker goroutine spawned via the hosted platform adapter, rendering
// into sk. Mirrors the teacher's CreateAndServe.
func Init(config Config, sk Sink) (*Logger, error) {
	if sk == nil {
		sk = sink.Void{}
	}

	l := &Logger{
		config:        config,
		adapter:       platform.NewHosted(config.WorkerCPUAffinity),
		taskRegistry:  tasks.NewRegistry(config.NumTasks),
		topicRegistry: topics.NewRegistry(config.NumTopics),
		arena:         session.NewArena(config.NumTasks),
		sink:          sk,
		metrics:       NewMetrics(),
	}
	l.observer = newDepthRecordingObserver(NewMetricsObserver(l.metrics), 64)

	cfg := convert.Config{
		AppendBasePrefix: config.AppendBasePrefix,
		AlignSigned:      config.AlignSigned,
	}

	if config.Direct {
		l.direct = newDirectPipe(sk, cfg, config.EndOfLine, l.observer)
		return l, nil
	}

	l.q = queue.New(config.QueueCapacity, config.BlockingPolicy, config.BoundedWait)
	l.w = worker.New(l.q, config.CircularCapacity, config.TransmitBufferSize, sk, l.adapter, config.RefreshPeriod, cfg, config.EndOfLine)
	l.adapter.SpawnWorker(l.w.Run)

	return l, nil
}

// Done stops the transmitter worker (or, in Direct mode, flushes nothing
// further since every record was already fully written) and waits for it
// to drain everything enqueued before Done was called. Safe to call more
// than once.
func (l *Logger) Done() {
	l.doneOnce.Do(func() {
		l.metrics.Stop()
		if l.w != nil {
			l.w.Stop()
			// Sentinel unit (Invalid task, discarded by the worker) wakes a
			// worker blocked waiting on an empty queue.
			l.q.Push(wire.Unit{})
			l.adapter.JoinWorker()
		}
	})
}

// RegisterTask assigns a fresh dense TaskID to the caller, keyed by a
// handle the adapter hands out via CurrentTaskHandle. On an adapter that
// can identify the same execution context across calls (a stable TCB
// pointer, say), registering the same context twice returns the same id;
// Hosted cannot make that guarantee since Go has no supported way to
// recover a goroutine's identity, so every RegisterTask call there gets a
// distinct id — call it once per producer and thread the result through
// Bind rather than calling it again from the same goroutine. Out-of-ids is
// fatal per spec.md §7, raised through the adapter.
func (l *Logger) RegisterTask(name string) TaskID {
	id, err := l.taskRegistry.Register(l.adapter.CurrentTaskHandle(), name)
	if err != nil {
		l.adapter.FatalError(platform.OutOfTaskIds)
	}
	return id
}

// RegisterTopic assigns the next free topic slot to prefix. Out-of-topics
// is non-fatal: the returned error's topic is permanently absent, and
// records naming it become no-ops.
func (l *Logger) RegisterTopic(prefix string) (Topic, error) {
	t, err := l.topicRegistry.Register(prefix)
	if err != nil {
		return topics.Invalid, &Error{Op: "register_topic", Code: ErrCodeOutOfTopics, Inner: err}
	}
	return t, nil
}

// Bind returns a context carrying taskID as ctx's current task, for
// Begin's lookup. See internal/tasks.Bind: Go has no native
// thread-local storage, so a producer goroutine must bind its context
// once (typically right after RegisterTask) and thread it through every
// subsequent Begin call.
func Bind(ctx context.Context, taskID TaskID) context.Context {
	return tasks.Bind(ctx, taskID)
}

// Begin starts a new record. ctx must carry the calling goroutine's
// binding from Bind, unless the adapter reports interrupt context or an
// explicit taskOverride is supplied. Returns a null (inert) session if:
// the adapter reports interrupt context and Config.AllowISR is false, or
// topic is non-zero and was never registered, or level is below
// Config.MinLevel.
func (l *Logger) Begin(ctx context.Context, level Level, topic Topic, taskOverride ...TaskID) *Session {
	if level < l.config.MinLevel {
		return session.Null()
	}

	var taskID TaskID
	switch {
	case len(taskOverride) > 0:
		taskID = taskOverride[0]
	case l.adapter.IsInInterruptContext():
		if !l.config.AllowISR {
			return session.Null()
		}
		taskID = tasks.ISR
	default:
		taskID = tasks.Current(ctx)
	}

	if topic != topics.Invalid && !l.topicRegistry.IsRegistered(topic) {
		return session.Null()
	}

	opts := session.Options{
		Queue:        l.pusher(),
		TaskReprText: l.taskReprText(taskID),
		TickFn:       func() uint32 { return l.adapter.TickMillis() },
		TopicPrefix:  l.topicRegistry.PrefixOf(topic),
		Support64Bit: l.config.Support64Bit,
		SupportFloat: l.config.SupportFloat,
	}
	return l.arena.Begin(taskID, opts)
}

// Metrics returns the Logger's metrics counters.
func (l *Logger) Metrics() *Metrics {
	return l.metrics
}

// DepthHistory returns a linearized snapshot of the most recent queue
// depth samples, oldest first: a post-mortem side channel independent of
// Metrics' running average, in case a crash dump needs the raw recent
// history rather than a smoothed statistic.
func (l *Logger) DepthHistory() []uint32 {
	return l.observer.depths.Snapshot()
}

func (l *Logger) pusher() session.Pusher {
	if l.direct != nil {
		return l.direct.queue()
	}
	return &observingQueue{q: l.q, observer: l.observer}
}

func (l *Logger) taskReprText(taskID TaskID) string {
	switch l.config.TaskRepr {
	case TaskReprName:
		if taskID == tasks.ISR {
			return "?"
		}
		if name := l.taskRegistry.NameOf(taskID); name != "" {
			return name
		}
		return "?"
	case TaskReprID:
		if taskID == tasks.ISR {
			return "?"
		}
		return itoa(uint64(taskID))
	default:
		return ""
	}
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// observingQueue wraps queue.Queue's Push with metrics observation, so the
// bounded-queue drop path and successful pushes both get counted without
// internal/queue needing to know about Metrics.
type observingQueue struct {
	q        *queue.Queue
	observer Observer
}

func (o *observingQueue) Push(u wire.Unit) bool {
	ok := o.q.Push(u)
	if ok {
		o.observer.ObserveAtomPushed()
	} else {
		o.observer.ObserveAtomDropped()
	}
	o.observer.ObserveQueueDepth(uint32(o.q.Len()))
	return ok
}

var (
	_ session.Pusher = (*observingQueue)(nil)
)

var defaultLogger atomic.Pointer[Logger]

// SetDefault installs l as the process-wide default Logger.
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Default returns the process-wide default Logger, or nil if none was set.
func Default() *Logger {
	return defaultLogger.Load()
}
