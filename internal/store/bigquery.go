package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/statement-ingest/internal/llm"
)

const bigQueryTable = "transactions"

// transactionRow is the BigQuery row shape. Amount stays a STRING column,
// matching the entry's decimal-as-string contract.
type transactionRow struct {
	TransactionDate     time.Time           `bigquery:"transaction_date"`
	TransactionDetail   string              `bigquery:"transaction_detail"`
	Amount              string              `bigquery:"amount"`
	Currency            string              `bigquery:"currency"`
	Category            string              `bigquery:"category"`
	ServiceSubscription bigquery.NullString `bigquery:"service_subscription"`
	ReceiverName        bigquery.NullString `bigquery:"receiver_name"`
	CreatedTS           time.Time           `bigquery:"created_ts"`
}

// BigQuery stores transactions in a warehouse dataset table.
type BigQuery struct {
	projectID string
	datasetID string
	client    *bigquery.Client
}

// NewBigQuery creates the strategy; the client is opened in Initialize.
func NewBigQuery(projectID, datasetID string) *BigQuery {
	return &BigQuery{projectID: projectID, datasetID: datasetID}
}

// Initialize creates the client and ensures the table exists.
func (b *BigQuery) Initialize(ctx context.Context) error {
	if b.projectID == "" {
		return fmt.Errorf("bigquery: project ID is required")
	}

	client, err := bigquery.NewClient(ctx, b.projectID)
	if err != nil {
		return fmt.Errorf("bigquery: creating client: %w", err)
	}

	table := client.Dataset(b.datasetID).Table(bigQueryTable)
	if _, err := table.Metadata(ctx); err != nil {
		schema, infErr := bigquery.InferSchema(transactionRow{})
		if infErr != nil {
			client.Close()
			return fmt.Errorf("bigquery: inferring schema: %w", infErr)
		}
		if crErr := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); crErr != nil {
			client.Close()
			return fmt.Errorf("bigquery: creating table: %w", crErr)
		}
	}

	b.client = client
	return nil
}

// AddTransaction streams one row into the transactions table.
func (b *BigQuery) AddTransaction(ctx context.Context, entry *llm.TransactionEntry) error {
	row := &transactionRow{
		TransactionDate:   entry.TransactionDate,
		TransactionDetail: entry.TransactionDetail,
		Amount:            entry.Amount,
		Currency:          entry.Currency,
		Category:          entry.Category,
		CreatedTS:         time.Now().UTC(),
	}
	if entry.ServiceSubscription != nil {
		row.ServiceSubscription = bigquery.NullString{StringVal: *entry.ServiceSubscription, Valid: true}
	}
	if entry.ReceiverName != nil {
		row.ReceiverName = bigquery.NullString{StringVal: *entry.ReceiverName, Valid: true}
	}

	inserter := b.client.Dataset(b.datasetID).Table(bigQueryTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("bigquery: inserting row: %w", err)
	}
	return nil
}

// GetTransactions returns entries ordered most recent first.
func (b *BigQuery) GetTransactions(ctx context.Context, limit int) ([]llm.TransactionEntry, error) {
	query := fmt.Sprintf(`
		SELECT transaction_date, transaction_detail, amount, currency,
		       category, service_subscription, receiver_name
		FROM %s.%s
		ORDER BY transaction_date DESC`, b.datasetID, bigQueryTable)

	q := b.client.Query(query)
	if limit > 0 {
		q = b.client.Query(query + " LIMIT @row_limit")
		q.Parameters = []bigquery.QueryParameter{{Name: "row_limit", Value: int64(limit)}}
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery: running query: %w", err)
	}

	var entries []llm.TransactionEntry
	for {
		var row transactionRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bigquery: reading row: %w", err)
		}

		e := llm.TransactionEntry{
			TransactionDate:   row.TransactionDate,
			TransactionDetail: row.TransactionDetail,
			Amount:            row.Amount,
			Currency:          row.Currency,
			Category:          row.Category,
		}
		if row.ServiceSubscription.Valid {
			v := row.ServiceSubscription.StringVal
			e.ServiceSubscription = &v
		}
		if row.ReceiverName.Valid {
			v := row.ReceiverName.StringVal
			e.ReceiverName = &v
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close releases the client.
func (b *BigQuery) Close(ctx context.Context) error {
	if b.client != nil {
		err := b.client.Close()
		b.client = nil
		if err != nil {
			return fmt.Errorf("bigquery: closing client: %w", err)
		}
	}
	return nil
}
