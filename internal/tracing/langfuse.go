// Package tracing records inference calls to a Langfuse-compatible
// ingestion endpoint for later audit. It is strictly best-effort: a nil
// client is a no-op and ingestion failures never propagate to callers.
package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultHost = "https://cloud.langfuse.com"

// Client buffers observability events and ships them in one batch on Flush.
type Client struct {
	secretKey string
	publicKey string
	host      string
	http      *http.Client
	log       zerolog.Logger

	mu     sync.Mutex
	events []event
}

type event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Body      map[string]any `json:"body"`
}

// New creates a client when both keys are present and returns nil otherwise,
// so an unconfigured sink stays a complete no-op path.
func New(secretKey, publicKey, host string, log zerolog.Logger) *Client {
	if secretKey == "" || publicKey == "" {
		log.Info().Msg("Langfuse credentials not provided, tracing disabled")
		return nil
	}
	if host == "" {
		host = defaultHost
	}
	return &Client{
		secretKey: secretKey,
		publicKey: publicKey,
		host:      host,
		http:      &http.Client{Timeout: 15 * time.Second},
		log:       log,
	}
}

// RecordGeneration buffers one inference call: metadata, the raw request as
// input, and either the raw response or the error at error level.
func (c *Client) RecordGeneration(name, model string, temperature float64, input any, output string, genErr error, start, end time.Time) {
	if c == nil {
		return
	}

	body := map[string]any{
		"id":        uuid.NewString(),
		"name":      name,
		"model":     model,
		"input":     input,
		"startTime": start.UTC().Format(time.RFC3339Nano),
		"endTime":   end.UTC().Format(time.RFC3339Nano),
		"metadata": map[string]any{
			"provider":    name,
			"model":       model,
			"temperature": temperature,
		},
	}
	if genErr != nil {
		body["level"] = "ERROR"
		body["statusMessage"] = genErr.Error()
	} else {
		body["output"] = output
	}

	c.mu.Lock()
	c.events = append(c.events, event{
		ID:        uuid.NewString(),
		Type:      "generation-create",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body:      body,
	})
	c.mu.Unlock()
}

// Flush posts all buffered events. It must be attempted at run end even when
// the run failed, so already-buffered traces are not lost. Errors are logged
// at warn level and swallowed.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}

	c.mu.Lock()
	batch := c.events
	c.events = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if err := c.post(ctx, batch); err != nil {
		c.log.Warn().Err(err).Int("events", len(batch)).Msg("Failed to flush traces")
	}
}

// Pending returns the number of buffered events.
func (c *Client) Pending() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *Client) post(ctx context.Context, batch []event) error {
	payload, err := json.Marshal(map[string]any{"batch": batch})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/public/ingestion", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post ingestion batch: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("ingestion returned status %d", resp.StatusCode)
	}
	return nil
}
