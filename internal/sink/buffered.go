package sink

import "sync"

// Buffered accumulates writes and flushes them to an inner Sink once
// either the configured byte threshold is reached or Flush is called
// explicitly. This is the worker's transmit_buffers concept pushed down
// into the sink layer. It holds a single buffer, and the worker never
// calls Flush: bytes below the threshold stay buffered until the owner
// calls Flush.
type Buffered struct {
	mu        sync.Mutex
	inner     Sink
	threshold int
	active    []byte
}

// NewBuffered wraps inner with a buffer that auto-flushes once it holds
// at least threshold bytes.
func NewBuffered(inner Sink, threshold int) *Buffered {
	if threshold < 1 {
		threshold = 1
	}
	return &Buffered{inner: inner, threshold: threshold}
}

func (b *Buffered) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = append(b.active, p...)
	if len(b.active) >= b.threshold {
		if err := b.flushLocked(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Flush pushes any buffered bytes to the inner sink regardless of the
// threshold.
func (b *Buffered) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked()
}

func (b *Buffered) flushLocked() error {
	if len(b.active) == 0 {
		return nil
	}
	_, err := b.inner.Write(b.active)
	b.active = b.active[:0]
	return err
}

var _ Sink = (*Buffered)(nil)
