package platform

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/coredump-systems/tinylog/internal/logging"
)

// osExit is indirected so tests can observe a FatalError call without
// actually terminating the test binary.
var osExit = os.Exit

// Hosted is the reference platform.Adapter for goroutine-based targets: a
// normal Linux/Unix process running the Go runtime. It pins the worker
// goroutine to a dedicated CPU when one is configured, sleeps with
// unix.Nanosleep to avoid per-call runtime timer scheduling overhead, and
// treats FatalError as a logged process exit.
type Hosted struct {
	// WorkerCPU pins the spawned worker goroutine to this CPU index via
	// SchedSetaffinity. A negative value leaves scheduling to the Go
	// runtime.
	WorkerCPU int

	startEpoch  time.Time
	done        chan struct{}
	handleCount atomic.Uint64
}

// NewHosted constructs a Hosted adapter. workerCPU selects the CPU the
// worker goroutine is pinned to; pass -1 to leave it unpinned.
func NewHosted(workerCPU int) *Hosted {
	return &Hosted{
		WorkerCPU:  workerCPU,
		startEpoch: time.Now(),
		done:       make(chan struct{}),
	}
}

// CurrentTaskHandle hands out a fresh, never-repeating token on every call.
// The Go runtime has no supported way to recover a goroutine's identity
// from within itself, so unlike a real thread-local storage target, Hosted
// cannot answer "is this the same caller as last time" on its own — and
// returning a constant value here would collapse every distinct caller
// onto the same registered task, which is worse than never deduplicating
// at all. Callers needing a stable per-goroutine identity across multiple
// calls must thread a context bound via tasks.Bind (re-exported as
// tinylog.Bind) instead; see internal/tasks.
func (h *Hosted) CurrentTaskHandle() TaskHandle {
	return h.handleCount.Add(1)
}

func (h *Hosted) CurrentTaskName() string {
	return ""
}

func (h *Hosted) IsInInterruptContext() bool {
	return false
}

func (h *Hosted) TickMillis() uint32 {
	return uint32(time.Since(h.startEpoch).Milliseconds())
}

func (h *Hosted) NewMutex() Mutex {
	return &hostedMutex{}
}

// SleepMillis uses unix.Nanosleep directly rather than time.Sleep to avoid
// handing control back to the Go scheduler's timer heap for a delay this
// short, mirroring the retry-wait idiom the worker's hot path favors.
func (h *Hosted) SleepMillis(ms uint32) {
	req := unix.NsecToTimespec(int64(ms) * int64(time.Millisecond))
	for {
		rem := unix.Timespec{}
		err := unix.Nanosleep(&req, &rem)
		if err == nil {
			return
		}
		if err != unix.EINTR {
			return
		}
		req = rem
	}
}

// SpawnWorker launches entry as a goroutine locked to its own OS thread so
// SchedSetaffinity pins the right kernel thread, not whichever one the Go
// scheduler happens to reuse next.
func (h *Hosted) SpawnWorker(entry func()) {
	go func() {
		defer close(h.done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if h.WorkerCPU >= 0 {
			var set unix.CPUSet
			set.Zero()
			set.Set(h.WorkerCPU)
			if err := unix.SchedSetaffinity(0, &set); err != nil {
				logging.Default().Warn("failed to pin worker goroutine", "cpu", h.WorkerCPU, "err", err)
			}
		}
		entry()
	}()
}

func (h *Hosted) JoinWorker() {
	<-h.done
}

// FatalError is the hosted analogue of a bare-metal halt: it logs the
// condition and terminates the process.
func (h *Hosted) FatalError(kind FatalKind) {
	logging.Default().Error("fatal error", "kind", kind.String())
	osExit(1)
}

func (h *Hosted) OneShotTimer(ms uint32, onExpire func()) Timer {
	t := time.AfterFunc(time.Duration(ms)*time.Millisecond, onExpire)
	return hostedTimer{t}
}

type hostedTimer struct {
	t *time.Timer
}

func (h hostedTimer) Stop() {
	h.t.Stop()
}

type hostedMutex struct {
	mu sync.Mutex
}

func (m *hostedMutex) Lock() {
	m.mu.Lock()
}

func (m *hostedMutex) Unlock() {
	m.mu.Unlock()
}
