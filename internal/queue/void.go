package queue

import "github.com/coredump-systems/tinylog/internal/wire"

// Void is the "direct" configuration's queue: a producer serializes
// straight into sink via the supplied drain function on the calling
// goroutine, with no worker and no queueing. Used when the sink is cheap
// and synchronous delivery is acceptable (for example a trace port).
type Void struct {
	drain func(wire.Unit)
}

// NewVoid constructs a Void queue that calls drain synchronously for
// every pushed unit.
func NewVoid(drain func(wire.Unit)) *Void {
	return &Void{drain: drain}
}

// Push delivers u to the configured drain immediately and always
// succeeds from the caller's point of view.
func (v *Void) Push(u wire.Unit) bool {
	v.drain(u)
	return true
}
