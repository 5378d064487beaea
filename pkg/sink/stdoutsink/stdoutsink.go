// Package stdoutsink is a console sink for development use: it writes the
// canonical line format to stdout. Adapted from the teacher's
// pkg/sink/stdout, the simplest sink in the pack.
package stdoutsink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/format"
)

// Sink writes canonical lines to an io.Writer, defaulting to os.Stdout.
type Sink struct {
	w     io.Writer
	namer format.ComponentNamer
	mu    sync.Mutex
}

// New returns a Sink writing to os.Stdout.
func New(namer format.ComponentNamer) *Sink {
	return &Sink{w: os.Stdout, namer: namer}
}

// NewWithWriter returns a Sink writing to w, for tests and embedders that
// want console output redirected.
func NewWithWriter(w io.Writer, namer format.ComponentNamer) *Sink {
	return &Sink{w: w, namer: namer}
}

// Dispatch writes one canonical line to the underlying writer.
func (s *Sink) Dispatch(r sinklog.Record) error {
	line := format.Line(r, s.namer)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, line)
	return err
}

// Close is a no-op: stdout is not owned by this sink.
func (s *Sink) Close() error { return nil }
