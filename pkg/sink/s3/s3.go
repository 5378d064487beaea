// Package s3 is a remote sinklog sink that archives canonical-format lines
// to S3-compatible object storage. Since a PutObject call per record would
// be prohibitively expensive, this sink batches lines in memory and
// flushes one object per size- or time-based window — the client
// construction (custom endpoint resolver, static credentials) is adapted
// directly from the teacher's S3Sink.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/format"
)

// Config configures the S3 sink.
type Config struct {
	Region      string
	Bucket      string
	KeyPrefix   string
	AccessKey   string
	SecretKey   string
	Endpoint    string // non-empty to target an S3-compatible store
	MaxBuffered int           // flush after this many buffered lines; 0 means "size-unbounded, time-only"
	FlushEvery  time.Duration // flush on this cadence regardless of size; 0 disables
	Namer       format.ComponentNamer
}

// Sink batches canonical lines and periodically uploads them as one S3
// object per flush.
type Sink struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	maxBuf    int
	namer     format.ComponentNamer

	mu     sync.Mutex
	buf    bytes.Buffer
	count  int
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

// New constructs an S3 sink and, if cfg.FlushEvery > 0, starts a
// background flush loop.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...any) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{PartitionID: "aws", URL: cfg.Endpoint, SigningRegion: region}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3 sink: unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	s := &Sink{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		maxBuf:    cfg.MaxBuffered,
		namer:     cfg.Namer,
		stop:      make(chan struct{}),
	}

	if cfg.FlushEvery > 0 {
		s.ticker = time.NewTicker(cfg.FlushEvery)
		s.wg.Add(1)
		go s.flushLoop()
	}
	return s, nil
}

func (s *Sink) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			_ = s.Flush(context.Background())
		case <-s.stop:
			return
		}
	}
}

// Dispatch appends r's canonical line to the in-memory buffer, flushing
// immediately if MaxBuffered is reached.
func (s *Sink) Dispatch(r sinklog.Record) error {
	line := format.Line(r, s.namer)

	s.mu.Lock()
	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	s.count++
	shouldFlush := s.maxBuf > 0 && s.count >= s.maxBuf
	s.mu.Unlock()

	if shouldFlush {
		return s.Flush(context.Background())
	}
	return nil
}

// Flush uploads any buffered lines as one object and clears the buffer. A
// no-op when nothing is buffered.
func (s *Sink) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.buf.Len() == 0 {
		s.mu.Unlock()
		return nil
	}
	data := append([]byte(nil), s.buf.Bytes()...)
	s.buf.Reset()
	s.count = 0
	s.mu.Unlock()

	key := fmt.Sprintf("%s%d.log", s.keyPrefix, time.Now().UnixNano())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("s3 sink: put object failed: %w", err)
	}
	return nil
}

// Close stops the background flush loop and uploads any remaining
// buffered lines.
func (s *Sink) Close() error {
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
	}
	return s.Flush(context.Background())
}
