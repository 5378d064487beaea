package sinklog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/user/sinklog/internal/diag"
	"github.com/user/sinklog/internal/filter"
	"github.com/user/sinklog/internal/metrics"
	"github.com/user/sinklog/internal/queue"
	"github.com/user/sinklog/internal/registry"
	"github.com/user/sinklog/internal/worker"
	fileSink "github.com/user/sinklog/pkg/sink/file"
	"github.com/user/sinklog/pkg/sink/function"
)

// Logger is the public surface of the logging core: it owns the Clock,
// Queue, Sink Registry, and Worker Pool, and orchestrates orderly
// shutdown. Construct with New; the zero value is not usable.
type Logger struct {
	clock Clock
	q     *queue.Queue
	reg   *registry.Registry
	pool  *worker.Pool
	diag  diag.Logger

	shuttingDown atomic.Bool
	closeOnce    sync.Once
}

// Option configures a Logger at construction.
type Option func(*options)

type options struct {
	workerCount   int
	queueCapacity int
	clock         Clock
	diag          diag.Logger
}

// WithWorkerCount sets the number of dispatch workers. Defaults to 1 —
// the default under which dispatch order is a total FIFO matching
// production order.
func WithWorkerCount(n int) Option {
	return func(o *options) { o.workerCount = n }
}

// WithQueueCapacity sets how many records may be buffered before Log
// blocks. Defaults to a generous buffer; pass 0 for a fully synchronous
// queue.
func WithQueueCapacity(n int) Option {
	return func(o *options) { o.queueCapacity = n }
}

// WithClock overrides the Clock used to timestamp records. Defaults to
// SystemClock; tests may supply a deterministic Clock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithDiagnosticLogger overrides the internal diagnostic logger used to
// report sink faults. Defaults to a zerolog-backed logger writing to
// stderr.
func WithDiagnosticLogger(l diag.Logger) Option {
	return func(o *options) { o.diag = l }
}

// New constructs a Logger: it creates the queue and registry and spawns
// the worker pool immediately, matching the construction effects
// described in §4.8.
func New(opts ...Option) *Logger {
	o := &options{workerCount: 1, queueCapacity: 1024, clock: SystemClock{}, diag: diag.NewDefault()}
	for _, opt := range opts {
		opt(o)
	}

	l := &Logger{
		clock: o.clock,
		q:     queue.New(o.queueCapacity),
		reg:   registry.New(),
		diag:  o.diag,
	}
	l.pool = worker.Start(l.q, l.reg, l.diag, o.workerCount)
	return l
}

// Log validates and enqueues a record. It returns ErrEmptyMessage if
// message is empty, ErrInvalidArgument if line is negative, and
// ErrShuttingDown if the logger has begun shutdown.
func (l *Logger) Log(severity Severity, component Component, message string, file string, line int) error {
	if message == "" {
		metrics.RecordsRejected.WithLabelValues("empty_message").Inc()
		return ErrEmptyMessage
	}
	if line < 0 {
		metrics.RecordsRejected.WithLabelValues("invalid_argument").Inc()
		return fmt.Errorf("%w: line must be >= 0, got %d", ErrInvalidArgument, line)
	}
	if l.shuttingDown.Load() {
		metrics.RecordsRejected.WithLabelValues("shutting_down").Inc()
		return ErrShuttingDown
	}

	r := Record{
		Timestamp: l.clock.Now(),
		Severity:  severity,
		Component: component,
		Message:   message,
		File:      file,
		Line:      line,
	}

	if err := l.q.Enqueue(context.Background(), r); err != nil {
		metrics.RecordsRejected.WithLabelValues("shutting_down").Inc()
		return err
	}
	metrics.RecordsEnqueued.Inc()
	metrics.QueueDepth.Set(float64(l.q.Len()))
	return nil
}

// register resolves filterSpec and inserts sink into the registry,
// updating the registered-sink gauge.
func (l *Logger) register(sink Sink, filterSpec any) (Handle, error) {
	if l.shuttingDown.Load() {
		return 0, ErrShuttingDown
	}
	f, err := filter.Resolve(filterSpec)
	if err != nil {
		return 0, err
	}
	h := l.reg.Insert(sink, f)
	metrics.RegisteredSinks.Set(float64(l.reg.Len()))
	return h, nil
}

// RegisterFunctionSink wraps fn as a function sink (§4.3) and registers it
// with the filter resolved from filterSpec (absent/nil means AcceptAll).
func (l *Logger) RegisterFunctionSink(fn function.Callback, filterSpec any) (Handle, error) {
	return l.register(function.New(fn), filterSpec)
}

// RegisterFileSink opens path in append mode immediately (failing with
// ErrFileOpenError on failure) and registers the resulting file sink
// (§4.4) with the filter resolved from filterSpec.
func (l *Logger) RegisterFileSink(path string, filterSpec any) (Handle, error) {
	sink, err := fileSink.New(path, nil)
	if err != nil {
		return 0, err
	}
	h, err := l.register(sink, filterSpec)
	if err != nil {
		sink.Close()
		return 0, err
	}
	return h, nil
}

// RegisterSink registers an already-constructed Sink (any of the remote
// sinks under pkg/sink, or a caller's own implementation) with the filter
// resolved from filterSpec. This is the general entry point the spec's
// §9 design notes describe sink ownership in terms of: the registry treats
// every Sink identically regardless of what it's backed by.
func (l *Logger) RegisterSink(sink Sink, filterSpec any) (Handle, error) {
	return l.register(sink, filterSpec)
}

// UnregisterSink removes the binding for h. It returns ErrHandleNotFound
// if h is unknown or was already unregistered, including double-unregister.
func (l *Logger) UnregisterSink(h Handle) error {
	if err := l.reg.Remove(h); err != nil {
		return err
	}
	metrics.RegisteredSinks.Set(float64(l.reg.Len()))
	return nil
}

// Close performs the orderly shutdown protocol from §4.8: mark shutting
// down, close the queue, join all workers, then close every registered
// sink. Idempotent and safe to call more than once.
func (l *Logger) Close() error {
	var firstErr error
	l.closeOnce.Do(func() {
		l.shuttingDown.Store(true)
		l.q.Close()
		l.pool.Join()

		for _, entry := range l.reg.Snapshot() {
			l.reg.Remove(entry.Handle)
			if err := entry.Sink.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("closing sink %T: %w", entry.Sink, err)
			}
		}
		metrics.RegisteredSinks.Set(0)
	})
	return firstErr
}
