package tinylog

import (
	"sync"

	"github.com/coredump-systems/tinylog/internal/constants"
	"github.com/coredump-systems/tinylog/internal/convert"
	"github.com/coredump-systems/tinylog/internal/queue"
	"github.com/coredump-systems/tinylog/internal/sink"
	"github.com/coredump-systems/tinylog/internal/wire"
)

// directPipe implements the "void queue" configuration of spec.md §4.4:
// the producer serializes straight into the converter on the calling
// goroutine, with no queue and no transmitter worker. Concurrent
// producers using Direct mode contend for directPipe's mutex rather than
// relying on the worker's per-task interleaving reassembly, which is why
// spec.md scopes this mode to sinks cheap enough that blocking there is
// acceptable.
type directPipe struct {
	mu  sync.Mutex
	cur *convert.Cursor
	buf []byte

	wroteAtom bool

	sink     sink.Sink
	cfg      convert.Config
	eol      byte
	observer Observer
}

func newDirectPipe(sk sink.Sink, cfg convert.Config, eol byte, observer Observer) *directPipe {
	return &directPipe{
		buf:      make([]byte, constants.DefaultTransmitBufferSize),
		sink:     sk,
		cfg:      cfg,
		eol:      eol,
		observer: observer,
	}
}

// queue adapts directPipe to session.Pusher via internal/queue's own Void
// type, the "direct" configuration's queue (spec.md §4.4), rather than a
// bespoke adapter type.
func (d *directPipe) queue() *queue.Void {
	return queue.NewVoid(d.handle)
}

func (d *directPipe) handle(u wire.Unit) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cur == nil {
		d.cur = convert.NewCursor(d.buf)
		d.wroteAtom = false
	}

	if u.Terminal() {
		d.cur.WriteByte(d.eol)
		if len(d.cur.Bytes()) > 0 {
			d.sink.Write(d.cur.Bytes())
		}
		d.cur = nil
		d.wroteAtom = false
		d.observer.ObserveRecordEmitted()
		return
	}

	if d.wroteAtom {
		d.cur.WriteByte(' ')
	}
	convert.Render(u, d.cur, d.cfg)
	// No separator between chunks of one chained inline string.
	d.wroteAtom = !u.Type.Continues()
	d.observer.ObserveAtomPushed()
}
