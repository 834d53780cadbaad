// Command transactions prints the most recent stored transactions from
// the configured persistence backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dvloznov/statement-ingest/internal/config"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/store"
)

func main() {
	limit := flag.Int("limit", 20, "maximum number of transactions to show")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	strategy, err := store.NewStrategy(cfg.Store.Strategy, store.Config{
		DatabaseURL:      cfg.Store.DatabaseURL,
		SQLitePath:       cfg.Store.SQLitePath,
		BigQueryProject:  cfg.Store.BigQueryProject,
		BigQueryDataset:  cfg.Store.BigQueryDataset,
		NotionToken:      cfg.Store.NotionToken,
		NotionDatabaseID: cfg.Store.NotionDatabaseID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create persistence strategy")
	}

	if err := strategy.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to store")
	}
	defer func() {
		if err := strategy.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}()

	entries, err := strategy.GetTransactions(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch transactions")
	}

	if len(entries) == 0 {
		fmt.Println("No transactions stored.")
		return
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-10s %-4s  %-28s %s",
			e.TransactionDate.Format("2006-01-02"), e.Amount, e.Currency, e.Category, e.TransactionDetail)
		if e.ReceiverName != nil {
			line += fmt.Sprintf("  -> %s", *e.ReceiverName)
		}
		fmt.Println(line)
	}
}
