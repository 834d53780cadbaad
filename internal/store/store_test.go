package store

import (
	"strings"
	"testing"
)

func TestNewStrategyUnknown(t *testing.T) {
	_, err := NewStrategy("cassandra", Config{})
	if err == nil {
		t.Fatal("expected error for unknown strategy, got nil")
	}
	if !strings.Contains(err.Error(), "cassandra") {
		t.Errorf("error should name the strategy, got: %v", err)
	}
}

func TestNewStrategyKnown(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"postgres", Config{DatabaseURL: "postgres://localhost/test"}},
		{"sqlite", Config{SQLitePath: "/tmp/test.db"}},
		{"bigquery", Config{BigQueryProject: "proj", BigQueryDataset: "ds"}},
		{"notion", Config{NotionToken: "secret", NotionDatabaseID: "db"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStrategy(tt.name, tt.cfg)
			if err != nil {
				t.Fatalf("NewStrategy(%q): %v", tt.name, err)
			}
			if s == nil {
				t.Fatalf("NewStrategy(%q) returned nil strategy", tt.name)
			}
		})
	}
}
