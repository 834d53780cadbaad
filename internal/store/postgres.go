package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvloznov/statement-ingest/internal/llm"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id SERIAL PRIMARY KEY,
	transaction_date TIMESTAMP WITH TIME ZONE NOT NULL,
	transaction_detail TEXT NOT NULL,
	amount VARCHAR(50) NOT NULL,
	currency VARCHAR(10) NOT NULL,
	category VARCHAR(50) NOT NULL,
	service_subscription VARCHAR(100),
	receiver_name VARCHAR(100),
	created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`

// Postgres stores transactions in an append-only table behind a pgx pool.
type Postgres struct {
	connString string
	pool       *pgxpool.Pool
}

// NewPostgres creates the strategy; the pool is opened in Initialize.
func NewPostgres(connString string) *Postgres {
	return &Postgres{connString: connString}
}

// Initialize opens the connection pool and ensures the schema exists.
func (p *Postgres) Initialize(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, p.connString)
	if err != nil {
		return fmt.Errorf("postgres: creating pool: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return fmt.Errorf("postgres: creating schema: %w", err)
	}

	p.pool = pool
	return nil
}

// AddTransaction appends one entry. created_at/updated_at are assigned by
// the store, never by the client.
func (p *Postgres) AddTransaction(ctx context.Context, entry *llm.TransactionEntry) error {
	const insert = `
	INSERT INTO transactions (
		transaction_date, transaction_detail, amount, currency,
		category, service_subscription, receiver_name
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := p.pool.Exec(ctx, insert,
		entry.TransactionDate,
		entry.TransactionDetail,
		entry.Amount,
		entry.Currency,
		entry.Category,
		entry.ServiceSubscription,
		entry.ReceiverName,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting transaction: %w", err)
	}
	return nil
}

// GetTransactions returns entries ordered most recent first.
func (p *Postgres) GetTransactions(ctx context.Context, limit int) ([]llm.TransactionEntry, error) {
	query := `
	SELECT transaction_date, transaction_detail, amount, currency,
	       category, service_subscription, receiver_name
	FROM transactions
	ORDER BY transaction_date DESC`

	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: querying transactions: %w", err)
	}
	defer rows.Close()

	var entries []llm.TransactionEntry
	for rows.Next() {
		var e llm.TransactionEntry
		if err := rows.Scan(
			&e.TransactionDate,
			&e.TransactionDetail,
			&e.Amount,
			&e.Currency,
			&e.Category,
			&e.ServiceSubscription,
			&e.ReceiverName,
		); err != nil {
			return nil, fmt.Errorf("postgres: scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating rows: %w", err)
	}
	return entries, nil
}

// Close releases the pool.
func (p *Postgres) Close(ctx context.Context) error {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}
