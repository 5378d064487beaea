// Package queue implements the bounded FIFO of sinklog.Record with a
// shutdown sentinel described in sinklog §4.6. It follows the same
// channel-plus-done-flag shape as the teacher's ring buffer: a buffered
// channel carries records, and a RWMutex-guarded closed flag paired with a
// done channel lets Close wake every blocked producer and consumer exactly
// once.
package queue

import (
	"context"
	"sync"

	"github.com/user/sinklog"
)

// Queue is a multi-producer/multi-consumer FIFO of records.
type Queue struct {
	ch     chan sinklog.Record
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// New returns an open Queue buffering up to capacity records before
// Enqueue blocks. A capacity of 0 yields a fully synchronous (unbuffered)
// queue.
func New(capacity int) *Queue {
	return &Queue{
		ch:   make(chan sinklog.Record, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue pushes r onto the queue. It returns sinklog.ErrShuttingDown if
// the queue has been closed, and ctx.Err() if ctx is done first. It blocks
// only while the queue is full and open.
func (q *Queue) Enqueue(ctx context.Context, r sinklog.Record) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return sinklog.ErrShuttingDown
	}

	select {
	case q.ch <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return sinklog.ErrShuttingDown
	}
}

// Dequeue blocks until a record is available or the queue is closed and
// drained, in which case ok is false (end-of-stream). Buffered records are
// always delivered before end-of-stream is reported, even after Close.
func (q *Queue) Dequeue(ctx context.Context) (r sinklog.Record, ok bool) {
	// Give a buffered record priority over an already-closed done channel:
	// without this, a select below would pick between the two at random.
	select {
	case r := <-q.ch:
		return r, true
	default:
	}

	select {
	case r := <-q.ch:
		return r, true
	case <-ctx.Done():
		return sinklog.Record{}, false
	case <-q.done:
		select {
		case r := <-q.ch:
			return r, true
		default:
			return sinklog.Record{}, false
		}
	}
}

// Close is idempotent. It stops accepting new records and wakes every
// blocked Dequeue. The data channel itself is never closed — only done is —
// so a concurrent Enqueue whose select races with Close can still land its
// send instead of panicking on a send to a closed channel.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Len reports the number of records currently buffered. Used only for the
// queue-depth gauge.
func (q *Queue) Len() int {
	return len(q.ch)
}
