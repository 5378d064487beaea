// Package registry implements the thread-safe Handle -> (Sink, Filter)
// mapping described in sinklog §4.5: insert-returning-handle,
// remove-by-handle, and a snapshot operation cheap enough to take under a
// brief read lock so dispatch never holds the registry lock across
// user-sink code.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/user/sinklog"
)

// Entry pairs a Sink with the Filter bound to it at registration.
type Entry struct {
	Handle sinklog.Handle
	Sink   sinklog.Sink
	Filter sinklog.Filter
}

// Registry is the sink registry: a reader/writer lock protecting a plain
// map, plus a monotonic handle counter that is never reused, matching the
// teacher's short-critical-section locking idiom around shared maps.
type Registry struct {
	mu      sync.RWMutex
	entries map[sinklog.Handle]Entry
	next    atomic.Uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[sinklog.Handle]Entry)}
}

// Insert allocates a fresh Handle, binds it to sink and filter, and returns
// it. The handle is never reused, even after the entry is later removed.
func (r *Registry) Insert(sink sinklog.Sink, f sinklog.Filter) sinklog.Handle {
	h := sinklog.Handle(r.next.Add(1))
	r.mu.Lock()
	r.entries[h] = Entry{Handle: h, Sink: sink, Filter: f}
	r.mu.Unlock()
	return h
}

// Remove unbinds h. It returns sinklog.ErrHandleNotFound if h is unknown or
// was already removed.
func (r *Registry) Remove(h sinklog.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[h]; !ok {
		return sinklog.ErrHandleNotFound
	}
	delete(r.entries, h)
	return nil
}

// Snapshot returns a consistent point-in-time view of the registry for a
// single dispatch. It clones only the (cheap) Entry values — sinks
// themselves are reference-shared, never deep-copied — and releases the
// lock before returning, so the caller may safely invoke user-sink code
// without holding any registry lock.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// Len reports the number of currently registered sinks. Used only for the
// registered-sink gauge; it is not part of the dispatch path.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
