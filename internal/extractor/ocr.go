package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ScannedTextThreshold is the scanned-page heuristic: when the text layer
// yields fewer trimmed characters than this, the document is assumed to be
// a scan and full-page OCR is forced. OCR is expensive, so it only runs
// when the cheap text layer proves the document has no embedded text.
const ScannedTextThreshold = 50

// OCRConfig tunes the OCR-capable variant.
type OCRConfig struct {
	Pdftotext string // default "pdftotext"
	Pdftoppm  string // default "pdftoppm"
	Tesseract string // default "tesseract"
	DPI       int    // render resolution for OCR, default 300
	MaxPages  int    // 0 = no page cap
	Runner    Runner
}

// OCR extracts the text layer first and falls back to rendering pages and
// running tesseract when the document looks scanned.
type OCR struct {
	cfg OCRConfig
}

// NewOCR creates the OCR-capable extractor.
func NewOCR(cfg OCRConfig) *OCR {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Runner == nil {
		cfg.Runner = execRunner{}
	}
	return &OCR{cfg: cfg}
}

func (o *OCR) Extract(ctx context.Context, data []byte, password string) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Engine: EngineOCR, Err: fmt.Errorf("empty document")}
	}

	path, cleanup, err := writeTempPDF(data)
	if err != nil {
		return "", &ExtractionError{Engine: EngineOCR, Err: err}
	}
	defer cleanup()

	layerText, err := o.textLayer(ctx, path, password)
	if err != nil {
		return "", err
	}

	if len(strings.TrimSpace(layerText)) >= ScannedTextThreshold {
		return strings.TrimSpace(layerText), nil
	}

	ocrText, err := o.fullPageOCR(ctx, path, password)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(ocrText), nil
}

func (o *OCR) textLayer(ctx context.Context, path, password string) (string, error) {
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, path, "-")

	out, errb, err := o.cfg.Runner.Run(ctx, o.cfg.Pdftotext, args...)
	if err != nil {
		return "", &ExtractionError{Engine: EngineOCR, Err: fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(string(errb)))}
	}
	return string(out), nil
}

func (o *OCR) fullPageOCR(ctx context.Context, path, password string) (string, error) {
	prefix := filepath.Join(filepath.Dir(path), "page")

	args := []string{"-r", fmt.Sprintf("%d", o.cfg.DPI), "-png"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, path, prefix)

	if _, errb, err := o.cfg.Runner.Run(ctx, o.cfg.Pdftoppm, args...); err != nil {
		return "", &ExtractionError{Engine: EngineOCR, Err: fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(errb)))}
	}

	// pdftoppm emits prefix-1.png, prefix-2.png, ...
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if o.cfg.MaxPages > 0 && len(pages) > o.cfg.MaxPages {
		pages = pages[:o.cfg.MaxPages]
	}
	if len(pages) == 0 {
		return "", &ExtractionError{Engine: EngineOCR, Err: fmt.Errorf("pdftoppm produced no page images")}
	}

	var b strings.Builder
	for _, img := range pages {
		out, errb, err := o.cfg.Runner.Run(ctx, o.cfg.Tesseract, img, "stdout")
		if err != nil {
			return "", &ExtractionError{Engine: EngineOCR, Err: fmt.Errorf("tesseract %s: %w: %s", filepath.Base(img), err, strings.TrimSpace(string(errb)))}
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.Write(out)
	}
	return b.String(), nil
}
