package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dvloznov/statement-ingest/internal/llm"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	transaction_date TEXT NOT NULL,
	transaction_detail TEXT NOT NULL,
	amount TEXT NOT NULL,
	currency TEXT NOT NULL,
	category TEXT NOT NULL,
	service_subscription TEXT,
	receiver_name TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`

// SQLite stores transactions in a local file, useful for single-machine
// runs and for exercising the strategy contract without a server.
type SQLite struct {
	path string
	db   *sql.DB
}

// NewSQLite creates the strategy; the database is opened in Initialize.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// Initialize opens the database file and ensures the schema exists.
func (s *SQLite) Initialize(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("sqlite: opening %q: %w", s.path, err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return fmt.Errorf("sqlite: creating schema: %w", err)
	}

	s.db = db
	return nil
}

// AddTransaction appends one entry. Dates are stored as RFC3339 strings so
// lexical ordering matches chronological ordering.
func (s *SQLite) AddTransaction(ctx context.Context, entry *llm.TransactionEntry) error {
	const insert = `
	INSERT INTO transactions (
		transaction_date, transaction_detail, amount, currency,
		category, service_subscription, receiver_name
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, insert,
		entry.TransactionDate.UTC().Format(time.RFC3339),
		entry.TransactionDetail,
		entry.Amount,
		entry.Currency,
		entry.Category,
		entry.ServiceSubscription,
		entry.ReceiverName,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting transaction: %w", err)
	}
	return nil
}

// GetTransactions returns entries ordered most recent first.
func (s *SQLite) GetTransactions(ctx context.Context, limit int) ([]llm.TransactionEntry, error) {
	query := `
	SELECT transaction_date, transaction_detail, amount, currency,
	       category, service_subscription, receiver_name
	FROM transactions
	ORDER BY transaction_date DESC`

	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying transactions: %w", err)
	}
	defer rows.Close()

	var entries []llm.TransactionEntry
	for rows.Next() {
		var e llm.TransactionEntry
		var date string
		if err := rows.Scan(
			&date,
			&e.TransactionDetail,
			&e.Amount,
			&e.Currency,
			&e.Category,
			&e.ServiceSubscription,
			&e.ReceiverName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing stored date %q: %w", date, err)
		}
		e.TransactionDate = parsed
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating rows: %w", err)
	}
	return entries, nil
}

// Close releases the database handle.
func (s *SQLite) Close(ctx context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		if err != nil {
			return fmt.Errorf("sqlite: closing database: %w", err)
		}
	}
	return nil
}
