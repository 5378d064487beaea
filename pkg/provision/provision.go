// Package provision loads a declarative list of sinks from YAML and
// registers them against a *sinklog.Logger — a supplemented feature (see
// SPEC_FULL.md) for embedders that want to stand up a known set of remote
// sinks at startup without hand-writing registration calls. Adapted from
// the teacher's internal/config package: YAML-tagged structs plus
// `${VAR}`/`${VAR:-default}` environment substitution before decoding.
package provision

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/sinklog"
	esSink "github.com/user/sinklog/pkg/sink/elasticsearch"
	"github.com/user/sinklog/pkg/sink/kafka"
	natsSink "github.com/user/sinklog/pkg/sink/nats"
	redisSink "github.com/user/sinklog/pkg/sink/redis"
	s3Sink "github.com/user/sinklog/pkg/sink/s3"
	slackSink "github.com/user/sinklog/pkg/sink/slack"
	"github.com/user/sinklog/pkg/sink/stdoutsink"
)

// Manifest is the top-level declarative sink-provisioning document.
type Manifest struct {
	Sinks []SinkSpec `yaml:"sinks"`
}

// SinkSpec declares one sink: its backend Type, backend-specific config,
// and the filter to register it with.
type SinkSpec struct {
	Type string `yaml:"type"` // stdout, kafka, redis, nats, s3, slack, elasticsearch

	// Filter selects one of the §4.2 ladder shapes. Exactly one of these
	// should be set; an entirely empty Filter resolves to AcceptAll.
	Filter struct {
		MinSeverity string           `yaml:"min_severity"`
		Components  []int            `yaml:"components"`
		PerComponent map[int]string  `yaml:"per_component"`
	} `yaml:"filter"`

	Kafka struct {
		Brokers  []string `yaml:"brokers"`
		Topic    string   `yaml:"topic"`
		Username string   `yaml:"username"`
		Password string   `yaml:"password"`
	} `yaml:"kafka"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
		MaxLen   int64  `yaml:"max_len"`
	} `yaml:"redis"`

	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`

	S3 struct {
		Region      string        `yaml:"region"`
		Bucket      string        `yaml:"bucket"`
		KeyPrefix   string        `yaml:"key_prefix"`
		Endpoint    string        `yaml:"endpoint"`
		AccessKey   string        `yaml:"access_key"`
		SecretKey   string        `yaml:"secret_key"`
		MaxBuffered int           `yaml:"max_buffered"`
		FlushEvery  time.Duration `yaml:"flush_every"`
	} `yaml:"s3"`

	Slack struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"slack"`

	Elasticsearch struct {
		Addresses []string `yaml:"addresses"`
		Username  string   `yaml:"username"`
		Password  string   `yaml:"password"`
		APIKey    string   `yaml:"api_key"`
		IndexBase string   `yaml:"index_base"`
	} `yaml:"elasticsearch"`
}

var envPattern = regexp.MustCompile(`\$\{(\w+)(?::-([^}]*))?\}`)

// substituteEnv expands ${VAR} and ${VAR:-default} references, matching
// the teacher's config-loading convention.
func substituteEnv(input string) string {
	return envPattern.ReplaceAllStringFunc(input, func(m string) string {
		parts := envPattern.FindStringSubmatch(m)
		if val, ok := os.LookupEnv(parts[1]); ok {
			return val
		}
		if strings.Contains(m, ":-") {
			return parts[2]
		}
		return m
	})
}

// Load reads and parses a manifest from path, substituting environment
// variables first.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("provision: failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal([]byte(substituteEnv(string(data))), &m); err != nil {
		return nil, fmt.Errorf("provision: failed to parse manifest: %w", err)
	}
	return &m, nil
}

var severityByName = map[string]sinklog.Severity{
	"debug":   sinklog.Debug,
	"info":    sinklog.Info,
	"warning": sinklog.Warning,
	"error":   sinklog.Error,
	"fatal":   sinklog.Fatal,
}

// resolveFilterSpec turns a SinkSpec's Filter block into one of the
// shapes internal/filter.Resolve accepts.
func resolveFilterSpec(spec SinkSpec) (any, error) {
	switch {
	case spec.Filter.MinSeverity != "":
		sev, ok := severityByName[strings.ToLower(spec.Filter.MinSeverity)]
		if !ok {
			return nil, fmt.Errorf("provision: unknown severity %q", spec.Filter.MinSeverity)
		}
		return sev, nil
	case len(spec.Filter.Components) > 0:
		cs := make([]sinklog.Component, len(spec.Filter.Components))
		for i, c := range spec.Filter.Components {
			cs[i] = sinklog.Component(c)
		}
		return cs, nil
	case len(spec.Filter.PerComponent) > 0:
		mapping := make(map[sinklog.Component]sinklog.Severity, len(spec.Filter.PerComponent))
		for c, sevName := range spec.Filter.PerComponent {
			sev, ok := severityByName[strings.ToLower(sevName)]
			if !ok {
				return nil, fmt.Errorf("provision: unknown severity %q", sevName)
			}
			mapping[sinklog.Component(c)] = sev
		}
		return mapping, nil
	default:
		return nil, nil
	}
}

// Apply builds the sink declared by each SinkSpec in m and registers it
// against l. It returns the handles of every sink registered so far, even
// if a later spec fails, so the caller can unregister what succeeded.
func Apply(l *sinklog.Logger, m *Manifest) ([]sinklog.Handle, error) {
	handles := make([]sinklog.Handle, 0, len(m.Sinks))
	for i, spec := range m.Sinks {
		sink, err := build(spec)
		if err != nil {
			return handles, fmt.Errorf("provision: sink #%d (%s): %w", i, spec.Type, err)
		}
		filterSpec, err := resolveFilterSpec(spec)
		if err != nil {
			return handles, fmt.Errorf("provision: sink #%d (%s): %w", i, spec.Type, err)
		}
		h, err := l.RegisterSink(sink, filterSpec)
		if err != nil {
			return handles, fmt.Errorf("provision: sink #%d (%s): %w", i, spec.Type, err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

func build(spec SinkSpec) (sinklog.Sink, error) {
	switch strings.ToLower(spec.Type) {
	case "stdout":
		return stdoutsink.New(nil), nil
	case "kafka":
		return kafka.New(kafka.Config{
			Brokers:  spec.Kafka.Brokers,
			Topic:    spec.Kafka.Topic,
			Username: spec.Kafka.Username,
			Password: spec.Kafka.Password,
		}), nil
	case "redis":
		return redisSink.New(redisSink.Config{
			Addr:     spec.Redis.Addr,
			Password: spec.Redis.Password,
			DB:       spec.Redis.DB,
			Key:      spec.Redis.Key,
			MaxLen:   spec.Redis.MaxLen,
		}), nil
	case "nats":
		return natsSink.New(natsSink.Config{URL: spec.NATS.URL, Subject: spec.NATS.Subject})
	case "s3":
		return s3Sink.New(context.Background(), s3Sink.Config{
			Region:      spec.S3.Region,
			Bucket:      spec.S3.Bucket,
			KeyPrefix:   spec.S3.KeyPrefix,
			Endpoint:    spec.S3.Endpoint,
			AccessKey:   spec.S3.AccessKey,
			SecretKey:   spec.S3.SecretKey,
			MaxBuffered: spec.S3.MaxBuffered,
			FlushEvery:  spec.S3.FlushEvery,
		})
	case "slack":
		return slackSink.New(spec.Slack.WebhookURL, nil), nil
	case "elasticsearch":
		return esSink.New(esSink.Config{
			Addresses: spec.Elasticsearch.Addresses,
			Username:  spec.Elasticsearch.Username,
			Password:  spec.Elasticsearch.Password,
			APIKey:    spec.Elasticsearch.APIKey,
			IndexBase: spec.Elasticsearch.IndexBase,
		})
	default:
		return nil, fmt.Errorf("unknown sink type %q", spec.Type)
	}
}
