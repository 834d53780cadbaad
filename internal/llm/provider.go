package llm

import (
	"context"
	"fmt"
	"strings"
)

// Request is a provider-native prompt, built by CreateRequest and consumed
// by Send on the same provider. Payload holds whatever shape the backend
// wants on the wire.
type Request struct {
	Provider    string
	Model       string
	Temperature float64
	Payload     any
}

// Provider turns extracted statement text into a validated TransactionHistory.
type Provider interface {
	// Name identifies the backend ("openai", "gemini").
	Name() string

	// CreateRequest builds the provider-native request from an instruction
	// template and the extracted text.
	CreateRequest(instruction, content string) *Request

	// Send submits the request and returns the schema-validated result.
	// Any network, auth or schema failure comes back as *InferenceError.
	Send(ctx context.Context, req *Request) (*TransactionHistory, error)
}

// InferenceError is the single failure kind the provider boundary emits.
// Callers treat it like an extraction failure: log, mark the file failed,
// move on.
type InferenceError struct {
	Provider string
	Err      error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed (%s): %v", e.Provider, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Config carries caller-supplied backend settings. Model and temperature
// are never hardcoded in the providers.
type Config struct {
	APIKey      string
	BaseURL     string // openai only; empty means the public endpoint
	Model       string
	Temperature float64
}

// NewProvider creates the backend selected by name. Unknown names fail
// fast instead of silently falling back.
func NewProvider(name string, cfg Config) (Provider, error) {
	switch strings.ToLower(name) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "gemini":
		return NewGeminiProvider(cfg), nil
	default:
		return nil, fmt.Errorf("NewProvider: unsupported provider type: %q", name)
	}
}
