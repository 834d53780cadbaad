package llm

import (
	"context"
	"encoding/json"
	"time"
)

// SpanRecorder is what the tracing wrapper needs from an observability sink.
type SpanRecorder interface {
	RecordGeneration(name, model string, temperature float64, input any, output string, genErr error, start, end time.Time)
}

// Traced wraps a provider so every Send is recorded as a generation span.
// With a nil sink the provider is returned unchanged; there is no
// disabled-but-present branch on the hot path.
func Traced(p Provider, sink SpanRecorder) Provider {
	if sink == nil {
		return p
	}
	return &tracedProvider{inner: p, sink: sink}
}

type tracedProvider struct {
	inner Provider
	sink  SpanRecorder
}

func (t *tracedProvider) Name() string { return t.inner.Name() }

func (t *tracedProvider) CreateRequest(instruction, content string) *Request {
	return t.inner.CreateRequest(instruction, content)
}

func (t *tracedProvider) Send(ctx context.Context, req *Request) (*TransactionHistory, error) {
	start := time.Now()
	history, err := t.inner.Send(ctx, req)
	end := time.Now()

	var output string
	if err == nil {
		if b, mErr := json.Marshal(history); mErr == nil {
			output = string(b)
		}
	}
	t.sink.RecordGeneration(req.Provider, req.Model, req.Temperature, req.Payload, output, err, start, end)

	return history, err
}
