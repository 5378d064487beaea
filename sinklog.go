// Package sinklog is an embeddable, asynchronous, multi-sink logging core.
// Producers submit Records tagged with a Severity and a caller-defined
// Component; the core fans them out to a dynamic set of registered sinks,
// applying a per-sink Filter. Delivery is decoupled from production: Log
// returns as soon as the record is enqueued, and one or more worker
// goroutines drain the queue and invoke sinks.
package sinklog

import (
	"errors"
	"fmt"
	"time"
)

// Severity is an ordered log level, low to high.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// Component is an embedder-defined subsystem tag. The core assigns it no
// meaning beyond equality; it does not fix a closed set of values.
type Component int

// Handle is an opaque, comparable identifier returned by sink registration.
// A retired Handle is never reissued for the lifetime of a Logger.
type Handle uint64

// Record is one immutable log event. Records are constructed on the
// producer side and are never mutated once built.
type Record struct {
	Timestamp time.Time
	Severity  Severity
	Component Component
	Message   string
	File      string
	Line      int
}

// Clock supplies a monotonically non-decreasing timestamp. Production code
// uses SystemClock; tests may supply a deterministic one.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default production Clock, backed by wall-clock time.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Error taxonomy. ErrSinkFault is never returned from a public Logger
// method; the worker pool records sink faults as diagnostics without
// wrapping them in it.
var (
	ErrEmptyMessage    = errors.New("sinklog: message is empty")
	ErrInvalidArgument = errors.New("sinklog: invalid argument")
	ErrShuttingDown    = errors.New("sinklog: logger is shutting down")
	ErrFileOpenError   = errors.New("sinklog: failed to open sink file")
	ErrHandleNotFound  = errors.New("sinklog: handle not found")
	ErrSinkFault       = errors.New("sinklog: sink fault")
)

// Sink is anything that can receive a dispatched Record. Registration glues
// a Sink to a Filter and returns a Handle; the worker pool only ever calls
// Dispatch on sinks whose Filter matches the record being delivered.
type Sink interface {
	// Dispatch delivers one record. Implementations must not block
	// indefinitely; a slow sink only slows its own dispatch, never the
	// registry or other sinks, because the worker holds no locks while
	// calling this.
	Dispatch(Record) error
	// Close releases any resource the sink owns (file handle, network
	// connection). Called once, during Logger shutdown.
	Close() error
}

// Filter is a pure predicate over a Record, built once at sink-registration
// time and never mutated thereafter.
type Filter interface {
	Matches(Record) bool
}
