package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider talks to the chat-completions API over plain HTTP.
type OpenAIProvider struct {
	cfg    Config
	client *http.Client
}

// NewOpenAIProvider creates an OpenAI provider from caller-supplied settings.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

// CreateRequest keeps the instruction and statement text in separate
// system/user roles, which this backend supports natively.
func (p *OpenAIProvider) CreateRequest(instruction, content string) *Request {
	return &Request{
		Provider:    p.Name(),
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		Payload: chatPayload{
			Model:          p.cfg.Model,
			Temperature:    p.cfg.Temperature,
			ResponseFormat: map[string]any{"type": "json_object"},
			Messages: []chatMessage{
				{Role: "system", Content: instruction},
				{Role: "user", Content: content},
			},
		},
	}
}

// Send submits the chat request and runs the response through the schema gate.
func (p *OpenAIProvider) Send(ctx context.Context, req *Request) (*TransactionHistory, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("encode request: %w", err)}
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("calling chat/completions: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode/100 != 2 {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("non-2xx status %d: %s", resp.StatusCode, truncate(string(raw), 512))}
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("no choices in response")}
	}

	return decodeHistory(p.Name(), cc.Choices[0].Message.Content)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
