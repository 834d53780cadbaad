package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvloznov/statement-ingest/internal/logger"
)

func TestNewWithoutKeysReturnsNil(t *testing.T) {
	log := logger.NewWithWriter(io.Discard)
	if c := New("", "pk", "", log); c != nil {
		t.Error("missing secret key should disable tracing")
	}
	if c := New("sk", "", "", log); c != nil {
		t.Error("missing public key should disable tracing")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	c.RecordGeneration("gemini", "gemini-2.5-flash", 0.1, "input", "output", nil, time.Now(), time.Now())
	c.Flush(context.Background())
	if c.Pending() != 0 {
		t.Error("nil client should report zero pending events")
	}
}

func TestRecordGenerationBuffers(t *testing.T) {
	c := New("sk", "pk", "http://localhost:1", logger.NewWithWriter(io.Discard))

	c.RecordGeneration("gemini", "gemini-2.5-flash", 0.1, "input", "output", nil, time.Now(), time.Now())
	c.RecordGeneration("gemini", "gemini-2.5-flash", 0.1, "input", "", errors.New("boom"), time.Now(), time.Now())

	if got := c.Pending(); got != 2 {
		t.Fatalf("pending = %d, want 2", got)
	}
}

func TestFlushPostsBatch(t *testing.T) {
	var gotBody map[string]any
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		if r.URL.Path != "/api/public/ingestion" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusMultiStatus)
	}))
	defer server.Close()

	c := New("sk", "pk", server.URL, logger.NewWithWriter(io.Discard))
	c.RecordGeneration("openai", "gpt-4o", 0.0, "input", "output", nil, time.Now(), time.Now())
	c.Flush(context.Background())

	if c.Pending() != 0 {
		t.Errorf("flush should drain the buffer, %d pending", c.Pending())
	}
	if gotUser != "pk" || gotPass != "sk" {
		t.Errorf("basic auth = %q/%q", gotUser, gotPass)
	}

	batch, ok := gotBody["batch"].([]any)
	if !ok || len(batch) != 1 {
		t.Fatalf("unexpected batch payload %v", gotBody)
	}
	ev := batch[0].(map[string]any)
	if ev["type"] != "generation-create" {
		t.Errorf("event type = %v", ev["type"])
	}
	body := ev["body"].(map[string]any)
	if body["model"] != "gpt-4o" || body["output"] != "output" {
		t.Errorf("unexpected event body %v", body)
	}
}

func TestFlushErrorRecordedInEventBody(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer server.Close()

	c := New("sk", "pk", server.URL, logger.NewWithWriter(io.Discard))
	c.RecordGeneration("gemini", "gemini-2.5-flash", 0.1, "input", "", errors.New("model unavailable"), time.Now(), time.Now())
	c.Flush(context.Background())

	batch := gotBody["batch"].([]any)
	body := batch[0].(map[string]any)["body"].(map[string]any)
	if body["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", body["level"])
	}
	if body["statusMessage"] != "model unavailable" {
		t.Errorf("statusMessage = %v", body["statusMessage"])
	}
	if _, hasOutput := body["output"]; hasOutput {
		t.Error("failed generation should carry no output")
	}
}

func TestFlushSwallowsIngestionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New("sk", "pk", server.URL, logger.NewWithWriter(io.Discard))
	c.RecordGeneration("gemini", "gemini-2.5-flash", 0.1, "input", "output", nil, time.Now(), time.Now())
	c.Flush(context.Background())

	if c.Pending() != 0 {
		t.Error("failed flush should still drop the batch")
	}
}
