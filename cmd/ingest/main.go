// Command ingest runs the full statement pipeline: find the configured
// Drive folder, download each PDF, extract its text, run the model and
// persist the structured transactions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dvloznov/statement-ingest/internal/archive"
	"github.com/dvloznov/statement-ingest/internal/config"
	"github.com/dvloznov/statement-ingest/internal/drive"
	"github.com/dvloznov/statement-ingest/internal/extractor"
	"github.com/dvloznov/statement-ingest/internal/llm"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/pipeline"
	"github.com/dvloznov/statement-ingest/internal/prompts"
	"github.com/dvloznov/statement-ingest/internal/store"
	"github.com/dvloznov/statement-ingest/internal/tracing"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	gateway, err := drive.NewGoogleDrive(ctx, drive.AuthConfig{
		Mode:        cfg.Drive.AuthMode,
		Credentials: cfg.Drive.Credentials,
		Token:       cfg.Drive.Token,
		SAKey:       cfg.Drive.SAKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Drive gateway")
	}

	extract, err := extractor.New(cfg.PDF.Engine)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create PDF extractor")
	}

	provider, err := llm.NewProvider(cfg.LLM.Provider, llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create LLM provider")
	}

	sink := tracing.New(cfg.Tracing.SecretKey, cfg.Tracing.PublicKey, cfg.Tracing.Host, log)
	var recorder llm.SpanRecorder
	var flusher pipeline.Flusher
	if sink != nil {
		recorder = sink
		flusher = sink
	} else {
		log.Info().Msg("Tracing disabled, no Langfuse credentials")
	}

	library, err := prompts.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load prompt library")
	}

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

	processor := &pipeline.Processor{
		Gateway:   gateway,
		Extractor: extract,
		Provider:  llm.Traced(provider, recorder),
		Prompts:   library,
		Saver:     store.NewManager(strategy),
		Archive:   archive.NewUploader(cfg.Archive.Bucket, cfg.Archive.Prefix),
		Sink:      flusher,
		Cfg: pipeline.Config{
			FolderName: cfg.Drive.FolderName,
			PromptID:   cfg.LLM.PromptID,
			Password:   cfg.PDF.Password,
			OutputDir:  cfg.Output.Dir,
			LLMDir:     cfg.Output.LLMDir,
			MaxFiles:   cfg.Output.MaxFiles,
		},
	}

	summary, err := processor.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Pipeline run failed")
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode summary")
	}
	fmt.Println(string(out))

	if summary.Failed > 0 {
		os.Exit(2)
	}
}
