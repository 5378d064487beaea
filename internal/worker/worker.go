// Package worker implements the worker pool loop described in sinklog
// §4.7: dequeue a record, snapshot the registry, evaluate each sink's
// filter, and dispatch on match inside a fault-isolation boundary. It is a
// simplified descendant of the teacher's sinkWriter.run/writeToSink
// dispatch loop in pkg/engine/engine.go — no retry, no batching, no dead
// letter, since the spec's fault-isolation contract calls for
// swallow-and-continue, not retry-with-backoff.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/diag"
	"github.com/user/sinklog/internal/metrics"
	"github.com/user/sinklog/internal/queue"
	"github.com/user/sinklog/internal/registry"
)

// Pool owns a fixed number of goroutines draining a Queue against a
// Registry snapshot taken fresh for every record.
type Pool struct {
	q    *queue.Queue
	reg  *registry.Registry
	diag diag.Logger
	wg   sync.WaitGroup
}

// Start spawns count workers pulling from q and dispatching against reg.
// count defaults to 1 if given as <= 0, matching sinklog's default
// worker_count.
func Start(q *queue.Queue, reg *registry.Registry, d diag.Logger, count int) *Pool {
	if count <= 0 {
		count = 1
	}
	p := &Pool{q: q, reg: reg, diag: d}
	for i := 0; i < count; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Join blocks until every worker has exited (i.e. the queue reached
// end-of-stream and drained).
func (p *Pool) Join() {
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	ctx := context.Background()
	for {
		record, ok := p.q.Dequeue(ctx)
		if !ok {
			return
		}
		metrics.QueueDepth.Set(float64(p.q.Len()))
		snapshot := p.reg.Snapshot()
		for _, entry := range snapshot {
			if !entry.Filter.Matches(record) {
				continue
			}
			p.dispatch(entry, record)
		}
	}
}

// dispatch invokes one sink inside a fault-isolation boundary: both a
// returned error and a panic are caught, recorded as a SinkFault
// diagnostic, and never propagated — to the queue, to other sinks, or back
// through the Logger's own record pipeline.
func (p *Pool) dispatch(entry registry.Entry, record sinklog.Record) {
	name := fmt.Sprintf("%T", entry.Sink)
	start := time.Now()
	defer func() {
		metrics.DispatchLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			metrics.SinkFaults.WithLabelValues(name).Inc()
			p.diag.Error("sink panicked during dispatch",
				"sink", name, "handle", entry.Handle, "panic", r)
		}
	}()

	if err := entry.Sink.Dispatch(record); err != nil {
		metrics.SinkFaults.WithLabelValues(name).Inc()
		p.diag.Warn("sink returned an error during dispatch",
			"sink", name, "handle", entry.Handle, "error", err)
		return
	}
	metrics.SinkDispatches.WithLabelValues(name).Inc()
}
