// Package prompts is a keyed store of instruction templates, keeping
// extraction logic decoupled from hardcoded prompt text.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed library.json
var libraryJSON []byte

// Prompt is one instruction template with human-readable metadata.
type Prompt struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

// NotFoundError reports a missing prompt id together with the ids that do
// exist. Asking for an absent prompt is a configuration bug, surfaced
// immediately rather than deferred.
type NotFoundError struct {
	ID        string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("prompt %q not found in library. Available prompts: %s", e.ID, strings.Join(e.Available, ", "))
}

// Library is the loaded prompt collection.
type Library struct {
	prompts map[string]Prompt
}

// Load parses the embedded library. It runs once at startup.
func Load() (*Library, error) {
	var prompts map[string]Prompt
	if err := json.Unmarshal(libraryJSON, &prompts); err != nil {
		return nil, fmt.Errorf("prompts.Load: parsing library: %w", err)
	}
	return &Library{prompts: prompts}, nil
}

// Get returns the system prompt for id.
func (l *Library) Get(id string) (string, error) {
	p, ok := l.prompts[id]
	if !ok {
		return "", &NotFoundError{ID: id, Available: l.IDs()}
	}
	return p.SystemPrompt, nil
}

// Info returns the full prompt entry for id.
func (l *Library) Info(id string) (Prompt, error) {
	p, ok := l.prompts[id]
	if !ok {
		return Prompt{}, &NotFoundError{ID: id, Available: l.IDs()}
	}
	return p, nil
}

// IDs lists the available prompt ids, sorted.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.prompts))
	for id := range l.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
