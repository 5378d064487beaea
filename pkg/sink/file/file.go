// Package file implements sinklog's append-mode file sink (§4.4): it owns
// an opened, append-mode handle and writes one canonical-format line per
// dispatched record, serialized internally so writes never interleave.
// Directly adapted from the teacher's FileSink.
package file

import (
	"fmt"
	"os"
	"sync"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/format"
)

// Sink is the file sink. Construction opens the file immediately in
// append mode; a failure to open surfaces as sinklog.ErrFileOpenError so
// registration fails fast rather than silently tolerating a bad path.
type Sink struct {
	file  *os.File
	namer format.ComponentNamer
	mu    sync.Mutex
}

// New opens path in append mode and returns a Sink bound to it. namer may
// be nil, in which case component values are rendered as plain integers.
func New(path string, namer format.ComponentNamer) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sinklog.ErrFileOpenError, err)
	}
	return &Sink{file: f, namer: namer}, nil
}

// Dispatch formats r as one canonical line and appends it to the file.
// Writes are serialized by mu so concurrent workers never interleave
// partial lines.
func (s *Sink) Dispatch(r sinklog.Record) error {
	line := format.Line(r, s.namer) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("file sink: write failed: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file handle. Called once during
// Logger shutdown.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Sync()
	closeErr := s.file.Close()
	if closeErr != nil {
		return closeErr
	}
	return err
}
