package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/statement-ingest/internal/llm"
)

type stubStrategy struct {
	InitializeFunc     func(ctx context.Context) error
	AddTransactionFunc func(ctx context.Context, entry *llm.TransactionEntry) error
	CloseFunc          func(ctx context.Context) error

	addCount   atomic.Int64
	closeCount atomic.Int64
}

func (s *stubStrategy) Initialize(ctx context.Context) error {
	if s.InitializeFunc != nil {
		return s.InitializeFunc(ctx)
	}
	return nil
}

func (s *stubStrategy) AddTransaction(ctx context.Context, entry *llm.TransactionEntry) error {
	s.addCount.Add(1)
	if s.AddTransactionFunc != nil {
		return s.AddTransactionFunc(ctx, entry)
	}
	return nil
}

func (s *stubStrategy) GetTransactions(ctx context.Context, limit int) ([]llm.TransactionEntry, error) {
	return nil, nil
}

func (s *stubStrategy) Close(ctx context.Context) error {
	s.closeCount.Add(1)
	if s.CloseFunc != nil {
		return s.CloseFunc(ctx)
	}
	return nil
}

func sampleHistory(n int) *llm.TransactionHistory {
	history := &llm.TransactionHistory{}
	for i := 0; i < n; i++ {
		history.Transactions = append(history.Transactions, llm.TransactionEntry{
			TransactionDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			TransactionDetail: "Grocery store",
			Amount:            "-42.50",
			Currency:          "EUR",
			Category:          "Food & Dining",
		})
	}
	return history
}

func TestSaveHistorySyncPersistsAll(t *testing.T) {
	stub := &stubStrategy{}
	m := NewManager(stub)

	if err := m.SaveHistorySync(context.Background(), sampleHistory(3)); err != nil {
		t.Fatalf("SaveHistorySync: %v", err)
	}
	if got := stub.addCount.Load(); got != 3 {
		t.Errorf("expected 3 adds, got %d", got)
	}
	if got := stub.closeCount.Load(); got != 1 {
		t.Errorf("expected 1 close, got %d", got)
	}
}

func TestSaveHistorySyncClosesAfterAddFailure(t *testing.T) {
	stub := &stubStrategy{
		AddTransactionFunc: func(ctx context.Context, entry *llm.TransactionEntry) error {
			return errors.New("insert failed")
		},
	}
	m := NewManager(stub)

	err := m.SaveHistorySync(context.Background(), sampleHistory(2))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := stub.closeCount.Load(); got != 1 {
		t.Errorf("expected close to run after failure, got %d calls", got)
	}
}

func TestSaveHistorySyncTimeout(t *testing.T) {
	release := make(chan struct{})
	stub := &stubStrategy{
		AddTransactionFunc: func(ctx context.Context, entry *llm.TransactionEntry) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return ctx.Err()
		},
	}
	m := NewManager(stub)
	m.timeout = 50 * time.Millisecond

	err := m.SaveHistorySync(context.Background(), sampleHistory(1))
	close(release)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSaveHistorySyncInitializeFailure(t *testing.T) {
	stub := &stubStrategy{
		InitializeFunc: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}
	m := NewManager(stub)

	err := m.SaveHistorySync(context.Background(), sampleHistory(1))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := stub.closeCount.Load(); got != 0 {
		t.Errorf("close should not run when initialize fails, got %d calls", got)
	}
	if got := stub.addCount.Load(); got != 0 {
		t.Errorf("no adds expected after initialize failure, got %d", got)
	}
}
