package worker

import (
	"github.com/coredump-systems/tinylog/internal/tasks"
	"github.com/coredump-systems/tinylog/internal/wire"
)

// circular is the worker's reassembly side-buffer: atoms that arrived
// while a different task's record was being actively streamed. It is
// touched only by the worker goroutine, so it needs no locking of its own.
type circular struct {
	buf      []wire.Unit
	capacity int
}

func newCircular(capacity int) *circular {
	if capacity < 1 {
		capacity = 1
	}
	return &circular{capacity: capacity}
}

func (c *circular) Empty() bool {
	return len(c.buf) == 0
}

func (c *circular) Full() bool {
	return len(c.buf) >= c.capacity
}

func (c *circular) Push(u wire.Unit) {
	c.buf = append(c.buf, u)
}

// PopOldest removes and returns the oldest held unit.
func (c *circular) PopOldest() (wire.Unit, bool) {
	if len(c.buf) == 0 {
		return wire.Unit{}, false
	}
	u := c.buf[0]
	c.buf = c.buf[1:]
	return u, true
}

// TakeMatching removes and returns the oldest unit belonging to taskID,
// preserving the relative order of everything left behind.
func (c *circular) TakeMatching(taskID uint8) (wire.Unit, bool) {
	for i, u := range c.buf {
		if u.TaskID == taskID {
			c.buf = append(c.buf[:i], c.buf[i+1:]...)
			return u, true
		}
	}
	return wire.Unit{}, false
}

// PurgeInvalidHead drops any run of discarded (Invalid task) atoms
// sitting at the head, called after a record finalizes.
func (c *circular) PurgeInvalidHead() {
	for len(c.buf) > 0 && c.buf[0].TaskID == uint8(tasks.Invalid) {
		c.buf = c.buf[1:]
	}
}
