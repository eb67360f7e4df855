package tinylog

import (
	"bytes"
	"sync"

	"github.com/coredump-systems/tinylog/internal/sink"
)

// MockSink is a test double implementing sink.Sink: it records every
// write's bytes and call count behind a mutex, mirroring the teacher's
// MockBackend's call-tracking approach generalized from block I/O to a
// byte-stream sink.
type MockSink struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	writeCalls int
	failNext   bool
}

// NewMockSink constructs an empty MockSink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Write implements sink.Sink.
func (m *MockSink) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCalls++
	if m.failNext {
		m.failNext = false
		return 0, ErrSinkError
	}
	return m.buf.Write(p)
}

// Bytes returns everything written so far.
func (m *MockSink) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, m.buf.Len())
	copy(out, m.buf.Bytes())
	return out
}

// String returns everything written so far as a string.
func (m *MockSink) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

// WriteCalls returns how many times Write was called.
func (m *MockSink) WriteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeCalls
}

// FailNextWrite arranges for the next Write call to return ErrSinkError
// instead of succeeding.
func (m *MockSink) FailNextWrite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = true
}

// Reset clears all recorded bytes and call counts.
func (m *MockSink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf.Reset()
	m.writeCalls = 0
	m.failNext = false
}

var _ sink.Sink = (*MockSink)(nil)
