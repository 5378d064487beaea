// Package redis is a remote sinklog sink pushing one canonical-format line
// per record onto a capped Redis list. Grounded on the teacher's real
// go-redis usage in pkg/state/redis.go — the teacher's own
// pkg/sink/redis/redis.go is a placeholder that never constructs a
// client, so this sink instead follows the state store's client
// construction and context-aware call style.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/format"
)

// Sink pushes canonical lines onto a Redis list, trimming it to MaxLen so
// it acts as a bounded rolling log (sinklog has no rotation/retention
// concept of its own; that is a property of this sink, not the core).
type Sink struct {
	client *redis.Client
	key    string
	maxLen int64
	namer  format.ComponentNamer
}

// Config configures the Redis sink.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	MaxLen   int64 // 0 disables trimming
	Namer    format.ComponentNamer
}

// New constructs a Redis sink. Like the Kafka sink, go-redis connects
// lazily; there is no synchronous dial to fail fast on here.
func New(cfg Config) *Sink {
	return &Sink{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		key:    cfg.Key,
		maxLen: cfg.MaxLen,
		namer:  cfg.Namer,
	}
}

// Dispatch pushes r's canonical line onto the list, trimming to MaxLen
// when configured.
func (s *Sink) Dispatch(r sinklog.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	line := format.Line(r, s.namer)
	if err := s.client.RPush(ctx, s.key, line).Err(); err != nil {
		return fmt.Errorf("redis sink: rpush failed: %w", err)
	}
	if s.maxLen > 0 {
		if err := s.client.LTrim(ctx, s.key, -s.maxLen, -1).Err(); err != nil {
			return fmt.Errorf("redis sink: ltrim failed: %w", err)
		}
	}
	return nil
}

// Close closes the underlying client connection.
func (s *Sink) Close() error {
	return s.client.Close()
}
