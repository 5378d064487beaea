// Package function implements sinklog's function (callback) sink (§4.3):
// it wraps a caller-supplied callable and invokes it with each dispatched
// Record, offering no concurrency guarantee to the callable beyond "may be
// called concurrently" — the teacher's simplest sink, pkg/sink/stdout, is
// the model for this one's minimalism.
package function

import "github.com/user/sinklog"

// Callback is the caller-supplied callable. It must not mutate the Record
// it receives and is responsible for its own thread safety if registered
// against a multi-worker Logger.
type Callback func(sinklog.Record)

// Sink adapts a Callback to sinklog.Sink.
type Sink struct {
	fn Callback
}

// New wraps fn as a Sink.
func New(fn Callback) *Sink {
	return &Sink{fn: fn}
}

// Dispatch invokes the wrapped callback. A panic inside fn is the worker
// pool's responsibility to catch, not this sink's; Dispatch itself never
// recovers so that the worker's fault-isolation boundary sees the panic.
func (s *Sink) Dispatch(r sinklog.Record) error {
	s.fn(r)
	return nil
}

// Close is a no-op: a function sink owns no resource.
func (s *Sink) Close() error { return nil }
