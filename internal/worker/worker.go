// Package worker implements the transmitter: the single consumer that
// drains the message queue, performs per-task interleaving reassembly,
// and hands finished records to the converter and sink.
package worker

import (
	"sync/atomic"
	"time"

	"github.com/coredump-systems/tinylog/internal/convert"
	"github.com/coredump-systems/tinylog/internal/platform"
	"github.com/coredump-systems/tinylog/internal/sink"
	"github.com/coredump-systems/tinylog/internal/tasks"
	"github.com/coredump-systems/tinylog/internal/wire"
)

// Dequeuer is the subset of queue.Queue the worker needs to drain.
type Dequeuer interface {
	Pop(timeout time.Duration) (wire.Unit, bool)
	PeekTaskID() (uint8, bool)
	PopIfTask(taskID uint8) (wire.Unit, bool)
	PopAny() (wire.Unit, bool)
	Len() int
}

// Worker is the single long-lived consumer draining the queue, grounded
// on the teacher's per-tag state machine (ioLoop / processRequests /
// handleCompletion) generalized from queue-tag ownership to per-task
// record interleaving.
type Worker struct {
	queue    Dequeuer
	circular *circular
	sink     sink.Sink
	adapter  platform.Adapter
	cfg      convert.Config
	eol      byte

	refreshPeriod time.Duration
	refreshFlag   atomic.Bool
	keepRunning   atomic.Bool

	transmitBuf []byte
	cur         *convert.Cursor
	wroteAtom   bool

	hasActive  bool
	activeTask uint8

	doneCh chan struct{}
}

// New constructs a Worker. transmitBufSize sizes the byte window the
// converter renders into before each record is handed to sink. eol is the
// byte written to terminate every record, matching Direct mode's
// configured terminator.
func New(q Dequeuer, circularCapacity, transmitBufSize int, sk sink.Sink, adapter platform.Adapter, refreshPeriod time.Duration, cfg convert.Config, eol byte) *Worker {
	w := &Worker{
		queue:         q,
		circular:      newCircular(circularCapacity),
		sink:          sk,
		adapter:       adapter,
		cfg:           cfg,
		eol:           eol,
		refreshPeriod: refreshPeriod,
		transmitBuf:   make([]byte, transmitBufSize),
		doneCh:        make(chan struct{}),
	}
	w.keepRunning.Store(true)
	return w
}

// Run is the worker's entry point, intended to be launched via the
// platform adapter's SpawnWorker.
func (w *Worker) Run() {
	defer close(w.doneCh)
	w.scheduleRefresh()

	for {
		if !w.keepRunning.Load() && w.queue.Len() == 0 && !w.hasActive && w.circular.Empty() {
			break
		}
		w.step()
	}
	w.flushCursor()
}

// Stop requests the worker to finish draining whatever was already
// enqueued, then exit. Partial records in per-task producer builders are
// lost by the time Stop is called; fully-enqueued atoms are still
// delivered.
func (w *Worker) Stop() {
	w.keepRunning.Store(false)
}

// Done returns a channel closed once Run has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.doneCh
}

// scheduleRefresh arranges for the refresh flag to be set once per
// refresh period via the adapter's one-shot timer. Adapters that don't
// support timers return nil from OneShotTimer; the worker still makes
// progress without one since Pop already bounds its wait to the refresh
// period when idle, at the cost of not flushing partially rendered bytes
// of a stalled active record between queue arrivals.
func (w *Worker) scheduleRefresh() {
	if w.adapter == nil {
		return
	}
	var onExpire func()
	onExpire = func() {
		w.refreshFlag.Store(true)
		if w.keepRunning.Load() {
			w.adapter.OneShotTimer(uint32(w.refreshPeriod.Milliseconds()), onExpire)
		}
	}
	w.adapter.OneShotTimer(uint32(w.refreshPeriod.Milliseconds()), onExpire)
}

// step runs one iteration of the main loop. The refresh timer only ever
// flushes whatever bytes are already rendered into the transmit buffer
// (spec.md §4.5: "if the transmit buffer is partially filled and no new
// atoms arrive within refresh_period, the worker flushes the partial
// buffer to the sink") — it never ends the active record. Ending a record
// early, appending EOL, and handing the active task slot to a waiting
// circular entry is the distinct circular-full back-pressure operation,
// also spec.md §4.5, triggered only from stepActive/waitForArrival.
func (w *Worker) step() {
	if w.refreshFlag.Swap(false) {
		w.flushCursor()
	}

	if !w.hasActive {
		w.stepIdle()
		return
	}
	w.stepActive()
}

// stepIdle implements the "no active task" branch of the main loop: take
// from circular if non-empty, else block-pop the queue.
func (w *Worker) stepIdle() {
	var u wire.Unit
	var ok bool
	if !w.circular.Empty() {
		u, ok = w.circular.PopOldest()
	} else {
		u, ok = w.queue.Pop(w.refreshPeriod)
	}
	if !ok {
		return
	}
	if u.TaskID == uint8(tasks.Invalid) {
		return
	}

	if u.Terminal() {
		w.ensureCursor()
		w.finalizeRecord()
		return
	}
	w.deliver(u)
	w.hasActive = true
	w.activeTask = u.TaskID
}

// stepActive implements the "active task exists" branch: drain circular
// for a match, then the queue head, moving non-matching queue heads aside
// into circular, and yielding the active record if circular fills with no
// match.
func (w *Worker) stepActive() {
	if u, ok := w.circular.TakeMatching(w.activeTask); ok {
		w.deliverActive(u)
		return
	}

	headTask, peeked := w.queue.PeekTaskID()
	switch {
	case peeked && headTask == w.activeTask:
		u, _ := w.queue.PopIfTask(w.activeTask)
		w.deliverActive(u)
	case peeked && !w.circular.Full():
		if u, popped := w.queue.PopAny(); popped && u.TaskID != uint8(tasks.Invalid) {
			w.circular.Push(u)
		}
	case peeked:
		w.yieldActiveRecord()
	default:
		w.waitForArrival()
	}
}

// waitForArrival handles the case where the queue was empty at peek time:
// block briefly for the next unit and route it correctly rather than
// dropping it, since a unit could arrive between the peek and here.
func (w *Worker) waitForArrival() {
	u, ok := w.queue.Pop(w.refreshPeriod)
	if !ok {
		return
	}
	if u.TaskID == uint8(tasks.Invalid) {
		return
	}
	if u.TaskID == w.activeTask {
		w.deliverActive(u)
		return
	}
	if w.circular.Full() {
		w.yieldActiveRecord()
		w.circular.Push(u)
		return
	}
	w.circular.Push(u)
}

func (w *Worker) deliverActive(u wire.Unit) {
	if u.Terminal() {
		w.ensureCursor()
		w.finalizeRecord()
		return
	}
	w.deliver(u)
}

// ensureCursor lazily opens the in-progress transmit cursor without
// writing anything into it, so a record consisting only of a terminal
// atom still flushes a bare line terminator.
func (w *Worker) ensureCursor() {
	if w.cur == nil {
		w.cur = convert.NewCursor(w.transmitBuf)
		w.wroteAtom = false
	}
}

// deliver renders one atom into the in-progress transmit cursor,
// prefixing a separator if this isn't the record's first atom and the
// previous atom was not a non-final chunk of the same inline string. The
// terminal atom itself carries no payload and must never reach here.
func (w *Worker) deliver(u wire.Unit) {
	w.ensureCursor()
	if w.wroteAtom {
		w.cur.WriteByte(' ')
	}
	convert.Render(u, w.cur, w.cfg)
	w.wroteAtom = !u.Type.Continues()
}

// finalizeRecord closes out a record that reached its terminal atom:
// writes the line terminator, flushes to the sink, and purges any stale
// discarded atoms sitting at the circular buffer's head.
func (w *Worker) finalizeRecord() {
	if w.cur != nil {
		w.cur.WriteByte(w.eol)
	}
	w.flushCursor()
	w.hasActive = false
	w.activeTask = 0
	w.circular.PurgeInvalidHead()
}

// yieldActiveRecord is the back-pressure release valve (spec.md §4.5):
// the active record is flushed truncated (the converter still appends
// EOL so downstream line readers resynchronize), and a new active task
// starts from circular's oldest unit if one is present.
func (w *Worker) yieldActiveRecord() {
	if w.cur != nil {
		w.cur.WriteByte(w.eol)
	}
	w.flushCursor()
	w.hasActive = false
	w.activeTask = 0

	u, ok := w.circular.PopOldest()
	if !ok {
		return
	}
	if u.TaskID == uint8(tasks.Invalid) {
		return
	}
	if u.Terminal() {
		w.ensureCursor()
		w.finalizeRecord()
		return
	}
	w.deliver(u)
	w.hasActive = true
	w.activeTask = u.TaskID
}

func (w *Worker) flushCursor() {
	if w.cur == nil {
		return
	}
	if len(w.cur.Bytes()) > 0 {
		w.sink.Write(w.cur.Bytes())
	}
	w.cur = nil
	w.wroteAtom = false
}
