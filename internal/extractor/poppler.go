package extractor

import (
	"context"
	"fmt"
	"strings"
)

// PopplerConfig tunes the fast text-layer variant.
type PopplerConfig struct {
	Pdftotext string // binary name, default "pdftotext"
	Separator string // joins per-page text, default "\n"
	Runner    Runner
}

// Poppler extracts the embedded text layer page by page with pdftotext.
// It is the fastest variant but reads nothing from scanned pages.
type Poppler struct {
	cfg PopplerConfig
}

// NewPoppler creates the fast text-layer extractor.
func NewPoppler(cfg PopplerConfig) *Poppler {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Separator == "" {
		cfg.Separator = "\n"
	}
	if cfg.Runner == nil {
		cfg.Runner = execRunner{}
	}
	return &Poppler{cfg: cfg}
}

func (p *Poppler) Extract(ctx context.Context, data []byte, password string) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Engine: EnginePoppler, Err: fmt.Errorf("empty document")}
	}

	path, cleanup, err := writeTempPDF(data)
	if err != nil {
		return "", &ExtractionError{Engine: EnginePoppler, Err: err}
	}
	defer cleanup()

	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, path, "-")

	out, errb, err := p.cfg.Runner.Run(ctx, p.cfg.Pdftotext, args...)
	if err != nil {
		return "", &ExtractionError{Engine: EnginePoppler, Err: fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(string(errb)))}
	}

	// pdftotext separates pages with form feeds; rejoin with the
	// configured separator.
	pages := strings.Split(string(out), "\f")
	for i := range pages {
		pages[i] = strings.TrimRight(pages[i], "\n")
	}
	return strings.TrimSpace(strings.Join(pages, p.cfg.Separator)), nil
}
