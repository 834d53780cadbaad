package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/statement-ingest/internal/llm"
	"github.com/dvloznov/statement-ingest/internal/logger"
)

// ErrTimeout is returned when a persistence run exceeds its deadline.
var ErrTimeout = errors.New("store: persistence timed out")

// saveTimeout bounds one Initialize -> Add -> Close cycle.
const saveTimeout = 30 * time.Second

// Manager runs a full persistence cycle on a dedicated goroutine so a
// wedged backend cannot stall the caller past the deadline.
type Manager struct {
	strategy Strategy
	timeout  time.Duration
}

// NewManager wraps a strategy with the default deadline.
func NewManager(strategy Strategy) *Manager {
	return &Manager{strategy: strategy, timeout: saveTimeout}
}

// SaveHistorySync persists every entry of the history and blocks until the
// cycle finishes or the deadline fires. Close always runs, even after an
// add failure, so connections are not leaked. On deadline overrun the
// worker is abandoned (its context is cancelled) and ErrTimeout surfaces.
func (m *Manager) SaveHistorySync(ctx context.Context, history *llm.TransactionHistory) error {
	log := logger.FromContext(ctx)

	workerCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.saveCycle(workerCtx, history)
	}()

	select {
	case err := <-done:
		return err
	case <-workerCtx.Done():
		if errors.Is(workerCtx.Err(), context.DeadlineExceeded) {
			log.Error().Dur("timeout", m.timeout).Msg("Persistence deadline exceeded, abandoning worker")
			return ErrTimeout
		}
		return fmt.Errorf("SaveHistorySync: %w", workerCtx.Err())
	}
}

func (m *Manager) saveCycle(ctx context.Context, history *llm.TransactionHistory) error {
	log := logger.FromContext(ctx)

	if err := m.strategy.Initialize(ctx); err != nil {
		return fmt.Errorf("saveCycle: initializing store: %w", err)
	}
	defer func() {
		if err := m.strategy.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}()

	for i := range history.Transactions {
		if err := m.strategy.AddTransaction(ctx, &history.Transactions[i]); err != nil {
			return fmt.Errorf("saveCycle: adding transaction %d: %w", i, err)
		}
	}

	log.Info().Int("count", len(history.Transactions)).Msg("Transactions persisted")
	return nil
}
