// Package slack is a remote sinklog sink posting canonical-format lines to
// a Slack incoming webhook — typically registered with a
// filter.MinSeverity(sinklog.Error) filter so only Error/Fatal records
// reach the channel. Adapted from the teacher's SlackSink; the bot-token
// chat.postMessage path is dropped in favor of the simpler webhook mode,
// since an embeddable logging core has no business holding a bot token
// scoped beyond one channel.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/user/sinklog"
	"github.com/user/sinklog/internal/format"
)

// Sink posts one Slack message per dispatched record.
type Sink struct {
	webhookURL string
	namer      format.ComponentNamer
	client     *http.Client
}

// New returns a Sink posting to webhookURL.
func New(webhookURL string, namer format.ComponentNamer) *Sink {
	return &Sink{webhookURL: webhookURL, namer: namer, client: http.DefaultClient}
}

// Dispatch posts r's canonical line as a Slack message.
func (s *Sink) Dispatch(r sinklog.Record) error {
	body, err := json.Marshal(map[string]string{"text": format.Line(r, s.namer)})
	if err != nil {
		return fmt.Errorf("slack sink: marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack sink: building request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack sink: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack sink: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op: the sink owns no persistent connection.
func (s *Sink) Close() error { return nil }
