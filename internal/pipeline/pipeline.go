// Package pipeline orchestrates the statement run: locate the Drive
// folder, fetch each PDF, extract its text, run the model and persist
// the structured transactions. One bad file never aborts the run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/statement-ingest/internal/archive"
	"github.com/dvloznov/statement-ingest/internal/drive"
	"github.com/dvloznov/statement-ingest/internal/extractor"
	"github.com/dvloznov/statement-ingest/internal/llm"
	"github.com/dvloznov/statement-ingest/internal/logger"
	"github.com/dvloznov/statement-ingest/internal/prompts"
)

// flushTimeout bounds the end-of-run trace flush.
const flushTimeout = 10 * time.Second

// Saver persists one extraction result as a blocking call.
type Saver interface {
	SaveHistorySync(ctx context.Context, history *llm.TransactionHistory) error
}

// Flusher drains buffered trace events before the run returns.
type Flusher interface {
	Flush(ctx context.Context)
}

// Config carries the run parameters the processor does not own.
type Config struct {
	FolderName string
	PromptID   string
	Password   string // shared password for encrypted statements, may be empty
	OutputDir  string
	LLMDir     string
	MaxFiles   int // 0 means unlimited
}

// Processor wires the stages together. All collaborators are required
// except Archive and Sink, which may be nil.
type Processor struct {
	Gateway   drive.Gateway
	Extractor extractor.Extractor
	Provider  llm.Provider
	Prompts   *prompts.Library
	Saver     Saver
	Archive   *archive.Uploader
	Sink      Flusher
	Cfg       Config
}

// Run executes the full pipeline and returns a per-file summary. It fails
// outright only when the run cannot start at all: bad folder, listing
// failure or unwritable output directories. Per-file failures are recorded
// in the summary and the run moves on.
func (p *Processor) Run(ctx context.Context) (*RunSummary, error) {
	log := logger.FromContext(ctx)

	// Flush on a detached context: when the run context was cancelled the
	// already-buffered traces should still reach the sink.
	if p.Sink != nil {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			defer cancel()
			p.Sink.Flush(flushCtx)
		}()
	}

	if err := p.ensureDirs(); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	folderID, err := p.resolveFolder(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	files, err := p.Gateway.List(ctx, drive.PDFQuery(folderID))
	if err != nil {
		return nil, fmt.Errorf("Run: listing PDFs in folder %s: %w", folderID, err)
	}
	log.Info().Str("folder", p.Cfg.FolderName).Int("files", len(files)).Msg("Found statement files")

	if p.Cfg.MaxFiles > 0 && len(files) > p.Cfg.MaxFiles {
		log.Info().Int("limit", p.Cfg.MaxFiles).Msg("Capping file count")
		files = files[:p.Cfg.MaxFiles]
	}

	summary := &RunSummary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("Run: %w", err)
		}
		result := p.processFile(ctx, file)
		if result.Success {
			log.Info().Str("file", file.Name).Msg("Statement processed")
		} else {
			log.Error().Str("file", file.Name).Str("error", result.Error).Msg("Statement failed")
		}
		summary.add(result)
	}

	log.Info().
		Int("total", summary.Total).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Msg("Run complete")
	return summary, nil
}

// resolveFolder maps the configured folder name to exactly one folder ID.
// Zero matches and ambiguous matches are both fatal: silently picking one
// of several same-named folders would process the wrong statements.
func (p *Processor) resolveFolder(ctx context.Context) (string, error) {
	folders, err := p.Gateway.List(ctx, drive.FolderQuery(p.Cfg.FolderName))
	if err != nil {
		return "", fmt.Errorf("resolveFolder: %w", err)
	}
	switch len(folders) {
	case 0:
		return "", fmt.Errorf("resolveFolder: folder %q not found", p.Cfg.FolderName)
	case 1:
		return folders[0].ID, nil
	default:
		return "", fmt.Errorf("resolveFolder: folder name %q is ambiguous (%d matches)", p.Cfg.FolderName, len(folders))
	}
}

func (p *Processor) ensureDirs() error {
	for _, dir := range []string{p.pdfDir(), p.textDir(), p.Cfg.LLMDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

func (p *Processor) pdfDir() string  { return filepath.Join(p.Cfg.OutputDir, "pdfs") }
func (p *Processor) textDir() string { return filepath.Join(p.Cfg.OutputDir, "texts") }

// processFile runs download -> extract -> infer -> persist for one file.
// Download, extraction and inference are skipped when their artifact
// already exists on disk; persistence always runs, since it leaves no
// local artifact to prove it happened.
func (p *Processor) processFile(ctx context.Context, file drive.RemoteFile) ProcessingResult {
	log := logger.FromContext(ctx)
	result := ProcessingResult{FileName: file.Name, FileID: file.ID}

	pdfPath := filepath.Join(p.pdfDir(), file.Name)
	if fileExists(pdfPath) {
		log.Debug().Str("file", file.Name).Msg("PDF already downloaded, skipping")
	} else if err := p.Gateway.DownloadToPath(ctx, file.ID, pdfPath); err != nil {
		result.Error = fmt.Sprintf("download: %v", err)
		return result
	}
	result.PDFPath = pdfPath

	base := strings.TrimSuffix(file.Name, ".pdf")
	textPath := filepath.Join(p.textDir(), base+".txt")
	text, err := p.extractText(ctx, pdfPath, textPath)
	if err != nil {
		result.Error = fmt.Sprintf("extract: %v", err)
		return result
	}
	result.TextPath = textPath
	result.TextLength = len(text)

	// The JSON artifact only caches the inference stage. Persistence must
	// still run on a cache hit: a previous run may have written the file
	// and then failed to store it.
	jsonPath := filepath.Join(p.Cfg.LLMDir, base+".json")
	var history *llm.TransactionHistory
	if fileExists(jsonPath) {
		log.Debug().Str("file", file.Name).Msg("Structured output already exists, skipping inference")
		history, err = loadHistory(jsonPath)
		if err != nil {
			result.Error = fmt.Sprintf("reading cached result: %v", err)
			return result
		}
	} else {
		history, err = p.infer(ctx, text)
		if err != nil {
			result.Error = fmt.Sprintf("inference: %v", err)
			return result
		}

		payload, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			result.Error = fmt.Sprintf("encoding result: %v", err)
			return result
		}
		if err := os.WriteFile(jsonPath, payload, 0o644); err != nil {
			result.Error = fmt.Sprintf("writing result: %v", err)
			return result
		}
	}
	result.JSONPath = jsonPath

	if err := p.Saver.SaveHistorySync(ctx, history); err != nil {
		result.Error = fmt.Sprintf("persist: %v", err)
		return result
	}

	if p.Archive != nil {
		if err := p.Archive.UploadArtifacts(ctx, file.Name, pdfPath, textPath, jsonPath); err != nil {
			log.Warn().Err(err).Str("file", file.Name).Msg("Artifact archival failed")
		}
	}

	result.Success = true
	return result
}

// extractText reuses the cached text file when present, otherwise extracts
// from the downloaded PDF and writes the cache.
func (p *Processor) extractText(ctx context.Context, pdfPath, textPath string) (string, error) {
	if fileExists(textPath) {
		cached, err := os.ReadFile(textPath)
		if err != nil {
			return "", fmt.Errorf("reading cached text: %w", err)
		}
		return string(cached), nil
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}
	text, err := p.Extractor.Extract(ctx, data, p.Cfg.Password)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing text: %w", err)
	}
	return text, nil
}

func (p *Processor) infer(ctx context.Context, text string) (*llm.TransactionHistory, error) {
	instruction, err := p.Prompts.Get(p.Cfg.PromptID)
	if err != nil {
		return nil, err
	}
	req := p.Provider.CreateRequest(instruction, text)
	return p.Provider.Send(ctx, req)
}

// loadHistory reads a previously written structured output file.
func loadHistory(path string) (*llm.TransactionHistory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var history llm.TransactionHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &history, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
