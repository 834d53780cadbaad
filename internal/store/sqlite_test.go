package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/statement-ingest/internal/llm"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(filepath.Join(t.TempDir(), "transactions.db"))

	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer s.Close(ctx)

	subscription := "Netflix"
	entries := []llm.TransactionEntry{
		{
			TransactionDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			TransactionDetail: "Grocery store",
			Amount:            "-42.50",
			Currency:          "EUR",
			Category:          "Food & Dining",
		},
		{
			TransactionDate:     time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
			TransactionDetail:   "Streaming service",
			Amount:              "-9.99",
			Currency:            "EUR",
			Category:            "Entertainment & Lifestyle",
			ServiceSubscription: &subscription,
		},
	}
	for i := range entries {
		if err := s.AddTransaction(ctx, &entries[i]); err != nil {
			t.Fatalf("AddTransaction: %v", err)
		}
	}

	got, err := s.GetTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}

	latest := got[0]
	if !latest.TransactionDate.Equal(entries[1].TransactionDate) {
		t.Errorf("expected most recent date %v, got %v", entries[1].TransactionDate, latest.TransactionDate)
	}
	if latest.TransactionDetail != "Streaming service" {
		t.Errorf("unexpected detail %q", latest.TransactionDetail)
	}
	if latest.Amount != "-9.99" || latest.Currency != "EUR" {
		t.Errorf("unexpected amount/currency %q %q", latest.Amount, latest.Currency)
	}
	if latest.Category != "Entertainment & Lifestyle" {
		t.Errorf("unexpected category %q", latest.Category)
	}
	if latest.ServiceSubscription == nil || *latest.ServiceSubscription != "Netflix" {
		t.Errorf("unexpected subscription %v", latest.ServiceSubscription)
	}
	if latest.ReceiverName != nil {
		t.Errorf("expected nil receiver, got %q", *latest.ReceiverName)
	}
}
