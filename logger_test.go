package sinklog_test

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/sinklog"
)

func collect() (sinklog.Component, func(sinklog.Record), func() []string) {
	var mu sync.Mutex
	var received []string
	cb := func(r sinklog.Record) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, r.Message)
	}
	get := func() []string {
		mu.Lock()
		defer mu.Unlock()
		out := make([]string, len(received))
		copy(out, received)
		return out
	}
	return 0, cb, get
}

// Scenario 1: severity threshold.
func TestSeverityThreshold(t *testing.T) {
	l := sinklog.New()
	defer l.Close()

	_, cb, get := collect()
	h, err := l.RegisterFunctionSink(cb, sinklog.Warning)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer l.UnregisterSink(h)

	l.Log(sinklog.Info, 0, "x", "t.go", 1)
	l.Log(sinklog.Warning, 0, "y", "t.go", 2)
	l.Log(sinklog.Error, 0, "z", "t.go", 3)

	waitFor(t, func() bool { return len(get()) == 2 })
	got := get()
	if got[0] != "y" || got[1] != "z" {
		t.Fatalf("expected [y z], got %v", got)
	}
}

// Scenario 2: component filter.
func TestComponentFilter(t *testing.T) {
	l := sinklog.New()
	defer l.Close()

	const S, M sinklog.Component = 1, 2
	_, cb, get := collect()
	h, err := l.RegisterFunctionSink(cb, []sinklog.Component{M})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer l.UnregisterSink(h)

	l.Log(sinklog.Info, S, "ns", "t.go", 1)
	l.Log(sinklog.Info, M, "ym", "t.go", 2)

	waitFor(t, func() bool { return len(get()) == 1 })
	if got := get(); len(got) != 1 || got[0] != "ym" {
		t.Fatalf("expected exactly [ym], got %v", got)
	}
}

// Scenario 3: file sink.
func TestFileSinkEndToEnd(t *testing.T) {
	tmp, err := os.CreateTemp("", "sinklog-*.log")
	if err != nil {
		t.Fatal(err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	l := sinklog.New()
	if _, err := l.RegisterFileSink(path, sinklog.Info); err != nil {
		t.Fatalf("register file sink: %v", err)
	}
	if err := l.Log(sinklog.Info, 1, "file log", "t.go", 1); err != nil {
		t.Fatalf("log: %v", err)
	}
	l.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "file log") {
		t.Fatalf("expected file to contain the logged line, got %q", content)
	}
}

// Scenario 4: unregister-then-log.
func TestUnregisterThenLog(t *testing.T) {
	l := sinklog.New()
	defer l.Close()

	_, cb, get := collect()
	h, err := l.RegisterFunctionSink(cb, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := l.UnregisterSink(h); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	l.Log(sinklog.Info, 0, "after unregister", "t.go", 1)

	time.Sleep(50 * time.Millisecond)
	if got := get(); len(got) != 0 {
		t.Fatalf("expected no deliveries, got %v", got)
	}
}

// Scenario 5: double unregister.
func TestDoubleUnregister(t *testing.T) {
	l := sinklog.New()
	defer l.Close()

	_, cb, _ := collect()
	h, err := l.RegisterFunctionSink(cb, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := l.UnregisterSink(h); err != nil {
		t.Fatalf("first unregister: %v", err)
	}
	if err := l.UnregisterSink(h); !errors.Is(err, sinklog.ErrHandleNotFound) {
		t.Fatalf("expected ErrHandleNotFound on second unregister, got %v", err)
	}
}

// Scenario 6: ten-message FIFO with worker_count=1 (the default).
func TestTenMessageFIFO(t *testing.T) {
	l := sinklog.New()
	defer l.Close()

	_, cb, get := collect()
	h, err := l.RegisterFunctionSink(cb, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer l.UnregisterSink(h)

	for i := 0; i < 10; i++ {
		l.Log(sinklog.Info, 0, "msg"+strconv.Itoa(i), "t.go", i)
	}

	waitFor(t, func() bool { return len(get()) == 10 })
	got := get()
	for i := 0; i < 10; i++ {
		want := "msg" + strconv.Itoa(i)
		if got[i] != want {
			t.Fatalf("index %d: got %q want %q (full: %v)", i, got[i], want, got)
		}
	}
}

// Scenario 7: exception isolation.
func TestExceptionIsolation(t *testing.T) {
	l := sinklog.New()
	defer l.Close()

	invoked := make(chan struct{}, 1)
	bad := func(sinklog.Record) {
		invoked <- struct{}{}
		panic("bad callback")
	}
	_, good, get := collect()

	hBad, err := l.RegisterFunctionSink(bad, nil)
	if err != nil {
		t.Fatalf("register bad: %v", err)
	}
	defer l.UnregisterSink(hBad)
	hGood, err := l.RegisterFunctionSink(good, nil)
	if err != nil {
		t.Fatalf("register good: %v", err)
	}
	defer l.UnregisterSink(hGood)

	if err := l.Log(sinklog.Info, 0, "r1", "t.go", 1); err != nil {
		t.Fatalf("log: %v", err)
	}

	select {
	case <-invoked:
	case <-time.After(2 * time.Second):
		t.Fatal("bad callback was never invoked")
	}
	waitFor(t, func() bool { return len(get()) == 1 })
	if got := get(); got[0] != "r1" {
		t.Fatalf("expected good sink to receive r1, got %v", got)
	}
}

// Boundary: empty message.
func TestEmptyMessageRejected(t *testing.T) {
	l := sinklog.New()
	defer l.Close()
	err := l.Log(sinklog.Info, 0, "", "t.go", 1)
	if !errors.Is(err, sinklog.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

// Boundary: negative line number is InvalidArgument.
func TestNegativeLineRejected(t *testing.T) {
	l := sinklog.New()
	defer l.Close()
	err := l.Log(sinklog.Info, 0, "x", "t.go", -1)
	if !errors.Is(err, sinklog.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

// Boundary: very long message delivered intact.
func TestVeryLongMessageDeliveredIntact(t *testing.T) {
	l := sinklog.New()
	defer l.Close()
	_, cb, get := collect()
	h, _ := l.RegisterFunctionSink(cb, nil)
	defer l.UnregisterSink(h)

	long := strings.Repeat("a", 10000)
	if err := l.Log(sinklog.Info, 0, long, "t.go", 1); err != nil {
		t.Fatalf("log: %v", err)
	}
	waitFor(t, func() bool { return len(get()) == 1 })
	if got := get(); got[0] != long {
		t.Fatalf("long message was not delivered intact (got length %d, want %d)", len(got[0]), len(long))
	}
}

// Boundary: non-ASCII message delivered intact.
func TestNonASCIIMessageDeliveredIntact(t *testing.T) {
	l := sinklog.New()
	defer l.Close()
	_, cb, get := collect()
	h, _ := l.RegisterFunctionSink(cb, nil)
	defer l.UnregisterSink(h)

	msg := "特殊字符!@#$%^&*()_+"
	if err := l.Log(sinklog.Info, 0, msg, "t.go", 1); err != nil {
		t.Fatalf("log: %v", err)
	}
	waitFor(t, func() bool { return len(get()) == 1 })
	if got := get(); got[0] != msg {
		t.Fatalf("got %q want %q", got[0], msg)
	}
}

// Boundary: empty component set matches nothing.
func TestEmptyComponentSetMatchesNothing(t *testing.T) {
	l := sinklog.New()
	defer l.Close()
	_, cb, get := collect()
	h, err := l.RegisterFunctionSink(cb, []sinklog.Component{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer l.UnregisterSink(h)

	l.Log(sinklog.Fatal, 42, "should not be delivered", "t.go", 1)
	time.Sleep(50 * time.Millisecond)
	if got := get(); len(got) != 0 {
		t.Fatalf("expected no deliveries, got %v", got)
	}
}

// RegisterFileSink on a bad path fails fast.
func TestRegisterFileSinkBadPathFailsFast(t *testing.T) {
	l := sinklog.New()
	defer l.Close()
	_, err := l.RegisterFileSink("/nonexistent-dir-xyz/sink.log", nil)
	if !errors.Is(err, sinklog.ErrFileOpenError) {
		t.Fatalf("expected ErrFileOpenError, got %v", err)
	}
}

// Shutdown rejects further logs and registrations.
func TestLogAfterCloseFails(t *testing.T) {
	l := sinklog.New()
	l.Close()
	if err := l.Log(sinklog.Info, 0, "x", "t.go", 1); !errors.Is(err, sinklog.ErrShuttingDown) {
		t.Fatalf("expected ErrShuttingDown, got %v", err)
	}
	if _, err := l.RegisterFunctionSink(func(sinklog.Record) {}, nil); !errors.Is(err, sinklog.ErrShuttingDown) {
		t.Fatalf("expected ErrShuttingDown on register after close, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	l := sinklog.New()
	if err := l.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close must also succeed, got %v", err)
	}
}

func TestDeterministicClock(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := sinklog.New(sinklog.WithClock(stubClock{t: fixed}))
	defer l.Close()

	var mu sync.Mutex
	var got sinklog.Record
	h, err := l.RegisterFunctionSink(func(r sinklog.Record) {
		mu.Lock()
		defer mu.Unlock()
		got = r
	}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer l.UnregisterSink(h)

	if err := l.Log(sinklog.Info, 0, "x", "t.go", 1); err != nil {
		t.Fatalf("log: %v", err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return !got.Timestamp.IsZero()
	})
	mu.Lock()
	defer mu.Unlock()
	if !got.Timestamp.Equal(fixed) {
		t.Fatalf("expected timestamp %v from stub clock, got %v", fixed, got.Timestamp)
	}
}

type stubClock struct{ t time.Time }

func (s stubClock) Now() time.Time { return s.t }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
