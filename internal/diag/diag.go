// Package diag is the core's internal diagnostic channel: the place a
// sink fault gets logged about. Per sinklog
// §4.3/§7, this must never be routed back through the Logger's own record
// pipeline, since that would admit feedback loops when the misbehaving
// sink is itself triggered by the diagnostic. It is a separate,
// zerolog-backed logger, matching the teacher's internal logging.
package diag

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the diagnostic logging surface used internally by the worker
// pool. It is intentionally small: diagnostics are operational
// noise, not application records.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type zerologLogger struct {
	logger zerolog.Logger
}

// NewDefault returns the default diagnostic Logger: zerolog writing to
// stderr with timestamps.
func NewDefault() Logger {
	return &zerologLogger{logger: zerolog.New(os.Stderr).With().Timestamp().Logger()}
}

func (l *zerologLogger) log(event *zerolog.Event, msg string, keysAndValues ...interface{}) {
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			event.Interface(key, keysAndValues[i+1])
		} else {
			event.Interface(key, nil)
		}
	}
	event.Msg(msg)
}

func (l *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(l.logger.Debug(), msg, keysAndValues...)
}

func (l *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(l.logger.Info(), msg, keysAndValues...)
}

func (l *zerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(l.logger.Warn(), msg, keysAndValues...)
}

func (l *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(l.logger.Error(), msg, keysAndValues...)
}

// Discard is a Logger that drops every diagnostic. Useful in tests that
// want quiet output.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}
