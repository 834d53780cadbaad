package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cleanModelJSON strips the Markdown fences and surrounding junk models
// sometimes wrap around their JSON despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there is still text around the JSON, keep only the outermost
	// object or array.
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	var end int
	if s[start] == '[' {
		end = strings.LastIndex(s, "]")
	} else {
		end = strings.LastIndex(s, "}")
	}
	if end > start {
		s = strings.TrimSpace(s[start : end+1])
	}
	return s
}

// decodeHistory is the schema gate: it normalizes the raw model text,
// validates it against the transaction schema and only then unmarshals.
// A response that cannot be coerced to the schema is a hard failure.
func decodeHistory(providerName, raw string) (*TransactionHistory, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, &InferenceError{Provider: providerName, Err: fmt.Errorf("empty response from model")}
	}

	normalized, err := normalizeResponse(clean)
	if err != nil {
		return nil, &InferenceError{Provider: providerName, Err: err}
	}

	if err := ValidateAgainstSchema(BuildTransactionSchema(), normalized); err != nil {
		return nil, &InferenceError{Provider: providerName, Err: err}
	}

	var history TransactionHistory
	if err := json.Unmarshal(normalized, &history); err != nil {
		return nil, &InferenceError{Provider: providerName, Err: fmt.Errorf("unmarshal transactions: %w", err)}
	}

	for i := range history.Transactions {
		if err := history.Transactions[i].Validate(); err != nil {
			return nil, &InferenceError{Provider: providerName, Err: err}
		}
	}

	return &history, nil
}

// normalizeResponse accepts either a bare transaction array or an object
// already wrapped as {"transactions": [...]} and returns the wrapped form.
func normalizeResponse(clean string) ([]byte, error) {
	var probe any
	if err := json.Unmarshal([]byte(clean), &probe); err != nil {
		return nil, fmt.Errorf("parse model JSON: %w", err)
	}

	switch v := probe.(type) {
	case []any:
		wrapped, err := json.Marshal(map[string]any{"transactions": v})
		if err != nil {
			return nil, fmt.Errorf("wrap transaction array: %w", err)
		}
		return wrapped, nil
	case map[string]any:
		return []byte(clean), nil
	default:
		return nil, fmt.Errorf("unexpected top-level JSON value %T", probe)
	}
}
