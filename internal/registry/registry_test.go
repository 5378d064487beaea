package registry_test

import (
	"errors"
	"testing"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/filter"
	"github.com/user/sinklog/internal/registry"
)

type nopSink struct{}

func (nopSink) Dispatch(sinklog.Record) error { return nil }
func (nopSink) Close() error                  { return nil }

func TestInsertRemoveRoundTrip(t *testing.T) {
	r := registry.New()
	h := r.Insert(nopSink{}, filter.AcceptAll)
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
	if err := r.Remove(h); err != nil {
		t.Fatalf("unexpected error removing live handle: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected 0 entries after remove, got %d", r.Len())
	}
}

func TestDoubleRemoveFails(t *testing.T) {
	r := registry.New()
	h := r.Insert(nopSink{}, filter.AcceptAll)
	if err := r.Remove(h); err != nil {
		t.Fatalf("first remove: unexpected error: %v", err)
	}
	err := r.Remove(h)
	if !errors.Is(err, sinklog.ErrHandleNotFound) {
		t.Fatalf("expected ErrHandleNotFound, got %v", err)
	}
}

func TestRemoveUnknownHandleFails(t *testing.T) {
	r := registry.New()
	err := r.Remove(sinklog.Handle(999))
	if !errors.Is(err, sinklog.ErrHandleNotFound) {
		t.Fatalf("expected ErrHandleNotFound, got %v", err)
	}
}

func TestHandlesAreNeverReused(t *testing.T) {
	r := registry.New()
	h1 := r.Insert(nopSink{}, filter.AcceptAll)
	if err := r.Remove(h1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2 := r.Insert(nopSink{}, filter.AcceptAll)
	if h1 == h2 {
		t.Fatalf("handle %v was reissued after removal", h1)
	}
}

func TestSnapshotReflectsCurrentEntries(t *testing.T) {
	r := registry.New()
	r.Insert(nopSink{}, filter.AcceptAll)
	r.Insert(nopSink{}, filter.AcceptAll)
	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 snapshot entries, got %d", len(snap))
	}
}

func TestSameSinkMayBeRegisteredUnderMultipleHandles(t *testing.T) {
	r := registry.New()
	shared := nopSink{}
	h1 := r.Insert(shared, filter.AcceptAll)
	h2 := r.Insert(shared, filter.AcceptAll)
	if h1 == h2 {
		t.Fatalf("expected distinct handles for two registrations")
	}
	if err := r.Remove(h1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].Handle != h2 {
		t.Fatalf("removing h1 must leave h2's binding live, got %+v", snap)
	}
}
