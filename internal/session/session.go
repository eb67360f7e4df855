// Package session implements the per-task record-assembly builder: the
// producer-facing streaming API that turns a chain of typed Push calls
// into an ordered run of wire.Unit atoms flushed to the queue on End.
package session

import (
	"github.com/coredump-systems/tinylog/internal/convert"
	"github.com/coredump-systems/tinylog/internal/tasks"
	"github.com/coredump-systems/tinylog/internal/wire"
)

// Pusher is the subset of queue.Queue (or queue.Void) a session needs:
// somewhere to send finished atoms.
type Pusher interface {
	Push(u wire.Unit) bool
}

// Options carries everything Begin needs to assemble a record's header,
// resolved by the caller (the root package, which has access to config
// and the registries) so this package stays free of registry lookups.
type Options struct {
	Queue Pusher

	// TaskReprText, if non-empty, is prepended as the record's task
	// representation atom: the task's id, name, or "?" for the ISR
	// pseudo-task, already rendered to its final text by the caller.
	TaskReprText string

	// TickFn, if non-nil, is called once (lazily, on the first Push) to
	// capture the record's timestamp tick.
	TickFn func() uint32

	// TopicPrefix, if non-empty, is prepended as the record's topic
	// prefix atom.
	TopicPrefix string

	// Support64Bit and SupportFloat gate the corresponding Push overloads,
	// mirroring a target that can't afford 64-bit arithmetic or a float
	// unit. When false, Push silently drops values of the disabled
	// width/kind instead of emitting an atom.
	Support64Bit bool
	SupportFloat bool
}

// Arena is the per-task scratch area backing every live Session: one
// slice per dense TaskID, each single-writer by construction since only
// the task owning a slot ever begins a session against it.
type Arena struct {
	slots [][]wire.Unit
}

// NewArena constructs an Arena with room for slot 0 (the Invalid task),
// numTasks task slots (ids 1..numTasks), plus the ISR pseudo-task slot.
func NewArena(numTasks int) *Arena {
	return &Arena{slots: make([][]wire.Unit, numTasks+2)}
}

// slotIndex maps a TaskID to its Arena slot. The ISR pseudo-task (255) is
// never a dense registry id, so it always maps to the one reserved slot
// past every real task's range rather than indexing by its raw value.
func (a *Arena) slotIndex(taskID tasks.TaskID) tasks.TaskID {
	if taskID == tasks.ISR {
		return tasks.TaskID(len(a.slots) - 1)
	}
	return taskID
}

// Begin acquires taskID's scratch slot for a new in-progress record. The
// caller is responsible for every precondition check spec'd for begin()
// (ISR-disabled, unregistered topic) before calling this — Begin itself
// always returns a live session.
func (a *Arena) Begin(taskID tasks.TaskID, opts Options) *Session {
	idx := a.slotIndex(taskID)
	a.slots[idx] = a.slots[idx][:0]
	return &Session{arena: a, taskID: taskID, slot: idx, opts: opts}
}

// Null returns an inert session: every method on it is a no-op. Used
// whenever begin()'s preconditions fail (spec.md §4.1).
func Null() *Session {
	return &Session{dead: true}
}

// Session is the producer-side handle for one in-progress record. Its
// zero value is also inert (arena == nil), matching the resolution that a
// default-constructed session must be safe but do nothing — no separate
// sentinel field is needed beyond checking arena == nil.
type Session struct {
	arena      *Arena
	taskID     tasks.TaskID
	slot       tasks.TaskID
	dead       bool
	headerDone bool
	pendingDir *wire.Directive
	seq        uint8
	opts       Options
}

func (s *Session) inert() bool {
	return s == nil || s.arena == nil || s.dead
}

// WithFormat sets the directive applied to exactly the next Push call; it
// then resets to the type's default directive.
func (s *Session) WithFormat(d wire.Directive) *Session {
	if s.inert() {
		return s
	}
	dCopy := d
	s.pendingDir = &dCopy
	return s
}

// Push appends one atom. value's dynamic type selects the wire variant;
// unsupported types are silently dropped (never panics, per the
// producer-never-panics policy).
func (s *Session) Push(value any) *Session {
	if s.inert() {
		return s
	}
	s.ensureHeader()

	switch v := value.(type) {
	case bool:
		s.pushBool(v)
	case uint8:
		s.pushU8(v)
	case uint16:
		s.pushU16(v)
	case uint32:
		s.pushU32(v)
	case uint64:
		if s.opts.Support64Bit {
			s.pushU64(v)
		}
	case int8:
		s.pushI8(v)
	case int16:
		s.pushI16(v)
	case int32:
		s.pushI32(v)
	case int64:
		if s.opts.Support64Bit {
			s.pushI64(v)
		}
	case int:
		if s.opts.Support64Bit {
			s.pushI64(int64(v))
		}
	case float32:
		if s.opts.SupportFloat {
			s.pushFloat(v)
		}
	case float64:
		if s.opts.SupportFloat {
			s.pushDouble(v)
		}
	case string:
		s.pushString(v, s.takeStaticRef())
	}
	// A directive not consumed by this value (non-numeric, or gated off)
	// still expires here.
	s.pendingDir = nil
	return s
}

// PushStaticString appends v by reference rather than by copy: the
// payload records a pointer-equivalent (a Go string header) instead of
// spending atoms copying the bytes. The referenced string's backing bytes
// must outlive the worker's consumption of the atom, which a string
// literal or process-lifetime buffer always satisfies.
func (s *Session) PushStaticString(v string) *Session {
	if s.inert() {
		return s
	}
	s.ensureHeader()
	s.pushString(v, true)
	return s
}

// End writes the terminal atom and flushes every atom assembled for this
// session, in order, to the queue. After End the session is dead and
// every further call on it is a no-op.
func (s *Session) End() *Session {
	if s.inert() {
		return s
	}
	var term wire.Unit
	term.TaskID = uint8(s.taskID)
	term.Sequence = 0
	s.arena.slots[s.slot] = append(s.arena.slots[s.slot], term)

	for _, u := range s.arena.slots[s.slot] {
		s.opts.Queue.Push(u)
	}
	s.arena.slots[s.slot] = s.arena.slots[s.slot][:0]
	s.dead = true
	return s
}

// takeStaticRef consumes a pending FillStaticRef directive, reporting
// whether the caller's next string Push should go by reference.
func (s *Session) takeStaticRef() bool {
	if s.pendingDir != nil && s.pendingDir.Fill == wire.FillStaticRef {
		s.pendingDir = nil
		return true
	}
	return false
}

func (s *Session) ensureHeader() {
	if s.headerDone {
		return
	}
	s.headerDone = true

	// Field order is tick, task representation, topic prefix: matches
	// the S1 scenario's worked example (`^\d{5} main ...`), not the
	// general bracketed listing order spec.md states elsewhere.
	if s.opts.TickFn != nil {
		var u wire.Unit
		u.Type = wire.U32
		// Fixed 5-digit zero-padded decimal, per the S1 scenario's
		// worked example regex (`^\d{5} ...`), not the body atoms'
		// no-padding default directive.
		u.Base, u.Fill = wire.Decimal, 5
		wire.PutU32(&u, s.opts.TickFn())
		s.appendAtom(u)
	}
	if s.opts.TaskReprText != "" {
		s.pushString(s.opts.TaskReprText, false)
	}
	if s.opts.TopicPrefix != "" {
		s.pushString(s.opts.TopicPrefix, false)
	}
}

func (s *Session) pushString(v string, byRef bool) {
	if byRef {
		var u wire.Unit
		u.Type = wire.CharPtr
		wire.PutCharPtr(&u, v)
		s.appendAtom(u)
		return
	}
	for len(v) > wire.PayloadSize {
		var u wire.Unit
		u.Type = wire.InlineString | wire.ContinuationBit
		wire.PutInlineString(&u, v[:wire.PayloadSize])
		s.appendAtom(u)
		v = v[wire.PayloadSize:]
	}
	var u wire.Unit
	u.Type = wire.InlineString
	wire.PutInlineString(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushBool(v bool) {
	var u wire.Unit
	u.Type = wire.Bool
	wire.PutBool(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushU8(v uint8) {
	var u wire.Unit
	u.Type = wire.U8
	s.applyDirective(&u)
	wire.PutU8(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushU16(v uint16) {
	var u wire.Unit
	u.Type = wire.U16
	s.applyDirective(&u)
	wire.PutU16(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushU32(v uint32) {
	var u wire.Unit
	u.Type = wire.U32
	s.applyDirective(&u)
	wire.PutU32(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushU64(v uint64) {
	var u wire.Unit
	u.Type = wire.U64
	s.applyDirective(&u)
	wire.PutU64(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushI8(v int8) {
	var u wire.Unit
	u.Type = wire.I8
	s.applyDirective(&u)
	wire.PutI8(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushI16(v int16) {
	var u wire.Unit
	u.Type = wire.I16
	s.applyDirective(&u)
	wire.PutI16(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushI32(v int32) {
	var u wire.Unit
	u.Type = wire.I32
	s.applyDirective(&u)
	wire.PutI32(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushI64(v int64) {
	var u wire.Unit
	u.Type = wire.I64
	s.applyDirective(&u)
	wire.PutI64(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushFloat(v float32) {
	var u wire.Unit
	u.Type = wire.Float
	s.applyDirective(&u)
	wire.PutFloat(&u, v)
	s.appendAtom(u)
}

func (s *Session) pushDouble(v float64) {
	var u wire.Unit
	u.Type = wire.Double
	s.applyDirective(&u)
	wire.PutDouble(&u, v)
	s.appendAtom(u)
}

// applyDirective resolves u's format directive from a one-shot WithFormat
// call, or this type's default, and clears the pending directive.
func (s *Session) applyDirective(u *wire.Unit) {
	if s.pendingDir != nil {
		u.Base, u.Fill = s.pendingDir.Base, s.pendingDir.Fill
		s.pendingDir = nil
		return
	}
	d := convert.DefaultDirective(u.Type)
	u.Base, u.Fill = d.Base, d.Fill
}

func (s *Session) appendAtom(u wire.Unit) {
	u.TaskID = uint8(s.taskID)
	u.Sequence = s.nextSequence()
	s.arena.slots[s.slot] = append(s.arena.slots[s.slot], u)
}

func (s *Session) nextSequence() uint8 {
	if s.seq == 0 {
		s.seq = 1
	}
	seq := s.seq
	s.seq++
	if s.seq == 0 {
		s.seq = 1
	}
	return seq
}
