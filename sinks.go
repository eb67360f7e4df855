package tinylog

import (
	"io"

	"github.com/coredump-systems/tinylog/internal/sink"
)

// Sink is the pluggable output interface a Logger renders finished
// records into, re-exported so callers never import internal/sink
// directly.
type Sink = sink.Sink

// NewWriterSink wraps any io.Writer (stdout, a file, a test buffer) as a
// Sink.
func NewWriterSink(w io.Writer) Sink {
	return sink.NewWriter(w)
}

// VoidSink discards everything written to it (spec.md §6, "void sink is
// permitted").
func VoidSink() Sink {
	return sink.Void{}
}

// NewBufferedSink wraps inner, batching writes until threshold bytes have
// accumulated or Flush is called explicitly.
func NewBufferedSink(inner Sink, threshold int) *sink.Buffered {
	return sink.NewBuffered(inner, threshold)
}
