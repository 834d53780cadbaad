package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildTransactionSchema returns the JSON Schema the provider responses are
// validated against. The same map is serialized into prompts so the model
// sees exactly the constraint it will be held to.
func BuildTransactionSchema() map[string]any {
	entry := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"transaction_date":   map[string]any{"type": "string", "minLength": 8},
			"transaction_detail": map[string]any{"type": "string", "minLength": 1},
			"amount":             map[string]any{"type": "string", "minLength": 1},
			"currency":           map[string]any{"type": "string", "minLength": 1},
			"category":           map[string]any{"type": "string", "enum": Categories},
			"service_subscription": map[string]any{
				"type": []string{"string", "null"},
			},
			"receiver_name": map[string]any{
				"type": []string{"string", "null"},
			},
		},
		"required": []string{"transaction_date", "transaction_detail", "amount", "currency", "category"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"transactions": map[string]any{
				"type":  "array",
				"items": entry,
			},
		},
		"required": []string{"transactions"},
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
