// Package elasticsearch is a remote sinklog sink indexing records into a
// daily Elasticsearch index, one document per index request. Adapted from
// the teacher's ElasticsearchSink: client construction is unchanged, but
// the search/browse/ack machinery (meant for a bidirectional CDC
// connector) is dropped in favor of a one-way writer. Records are not
// batched into bulk requests.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/user/sinklog"
)

// document is the JSON shape indexed for each record.
type document struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Component int       `json:"component"`
	Message   string    `json:"message"`
	File      string    `json:"file"`
	Line      int       `json:"line"`
}

// Config configures the Elasticsearch sink.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	IndexBase string // daily index is IndexBase + "-YYYY.MM.DD"
}

// Sink indexes records as JSON documents into Elasticsearch.
type Sink struct {
	client    *elasticsearch.Client
	indexBase string
}

// New constructs the Elasticsearch sink's client. Connection errors are
// typically not surfaced here (go-elasticsearch validates configuration,
// not reachability, at construction) — reachability problems surface on
// the first Dispatch instead.
func New(cfg Config) (*Sink, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch sink: failed to create client: %w", err)
	}
	return &Sink{client: client, indexBase: cfg.IndexBase}, nil
}

func (s *Sink) indexName(t time.Time) string {
	return fmt.Sprintf("%s-%s", s.indexBase, t.Format("2006.01.02"))
}

// Dispatch indexes r as one document in the day's index.
func (s *Sink) Dispatch(r sinklog.Record) error {
	doc := document{
		Timestamp: r.Timestamp,
		Severity:  r.Severity.String(),
		Component: int(r.Component),
		Message:   r.Message,
		File:      r.File,
		Line:      r.Line,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch sink: marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := esapi.IndexRequest{
		Index: s.indexName(r.Timestamp),
		Body:  bytes.NewReader(data),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("elasticsearch sink: index request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch sink: index error: %s", res.String())
	}
	return nil
}

// Close is a no-op: the client holds no resource that needs releasing.
func (s *Sink) Close() error { return nil }
