// Package store persists transaction records behind a uniform strategy
// contract, pluggable by backend name.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/statement-ingest/internal/llm"
)

// Strategy is the persistence contract. Backends own their connection
// lifecycle: Initialize opens and prepares the schema, Close releases
// everything, including on failure paths.
type Strategy interface {
	Initialize(ctx context.Context) error
	AddTransaction(ctx context.Context, entry *llm.TransactionEntry) error

	// GetTransactions returns entries most recent first. limit <= 0
	// means no limit.
	GetTransactions(ctx context.Context, limit int) ([]llm.TransactionEntry, error)

	Close(ctx context.Context) error
}

// Config carries backend connection settings; each strategy reads only its
// own fields.
type Config struct {
	DatabaseURL      string // postgres
	SQLitePath       string // sqlite
	BigQueryProject  string // bigquery
	BigQueryDataset  string // bigquery
	NotionToken      string // notion
	NotionDatabaseID string // notion
}

// NewStrategy maps a strategy name to a backend. Unknown names fail fast.
func NewStrategy(name string, cfg Config) (Strategy, error) {
	switch strings.ToLower(name) {
	case "postgres":
		return NewPostgres(cfg.DatabaseURL), nil
	case "sqlite":
		return NewSQLite(cfg.SQLitePath), nil
	case "bigquery":
		return NewBigQuery(cfg.BigQueryProject, cfg.BigQueryDataset), nil
	case "notion":
		return NewNotion(cfg.NotionToken, cfg.NotionDatabaseID), nil
	default:
		return nil, fmt.Errorf("NewStrategy: unknown database strategy: %q", name)
	}
}
