// Package nats is a remote sinklog sink publishing canonical-format lines
// to a NATS JetStream subject. Adapted from the teacher's
// NatsJetStreamSink; connection and JetStream context setup happen
// synchronously at construction, so a bad URL or missing JetStream
// support surfaces immediately, the same way a bad path fails a file
// sink's registration.
package nats

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/format"
)

// Sink publishes canonical lines to a NATS JetStream subject.
type Sink struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	namer   format.ComponentNamer
}

// Config configures the NATS sink.
type Config struct {
	URL      string
	Subject  string
	Username string
	Password string
	Token    string
	Namer    format.ComponentNamer
}

// New connects to NATS, opens a JetStream context, and returns a Sink
// bound to cfg.Subject. Both steps fail fast: a connection or JetStream
// error is returned immediately rather than deferred to first Dispatch.
func New(cfg Config) (*Sink, error) {
	opts := []nats.Option{}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	} else if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats sink: connect failed: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats sink: jetstream context failed: %w", err)
	}

	return &Sink{nc: nc, js: js, subject: cfg.Subject, namer: cfg.Namer}, nil
}

// Dispatch publishes r's canonical line to the configured subject.
func (s *Sink) Dispatch(r sinklog.Record) error {
	line := format.Line(r, s.namer)
	if _, err := s.js.Publish(s.subject, []byte(line)); err != nil {
		return fmt.Errorf("nats sink: publish failed: %w", err)
	}
	return nil
}

// Close closes the underlying NATS connection.
func (s *Sink) Close() error {
	s.nc.Close()
	return nil
}
