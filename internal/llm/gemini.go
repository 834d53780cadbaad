package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider uses the GenAI SDK. Gemini has no system/user role split,
// so the instruction and the statement text travel as a single user blob.
type GeminiProvider struct {
	cfg Config
}

// NewGeminiProvider creates a Gemini provider from caller-supplied settings.
func NewGeminiProvider(cfg Config) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	return &GeminiProvider{cfg: cfg}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// CreateRequest concatenates the instruction and the content into one prompt.
func (p *GeminiProvider) CreateRequest(instruction, content string) *Request {
	return &Request{
		Provider:    p.Name(),
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		Payload:     fmt.Sprintf("%s\n\nText to process:\n%s", instruction, content),
	}
}

// Send submits the prompt with JSON output forced and runs the response
// through the schema gate.
func (p *GeminiProvider) Send(ctx context.Context, req *Request) (*TransactionHistory, error) {
	prompt, ok := req.Payload.(string)
	if !ok {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("request was not built by this provider")}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("create genai client: %w", err)}
	}

	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("generate content: %w", err)}
	}

	raw := resp.Text()
	if raw == "" {
		return nil, &InferenceError{Provider: p.Name(), Err: fmt.Errorf("empty response from model")}
	}

	return decodeHistory(p.Name(), raw)
}
