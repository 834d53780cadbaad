package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeConfig tunes the pure-Go variant.
type NativeConfig struct {
	Separator string // joins per-page text, default "\n"
}

// Native parses the PDF in-process with no external binaries. Slower than
// poppler on large documents but dependency-light.
type Native struct {
	cfg NativeConfig
}

// NewNative creates the pure-Go extractor.
func NewNative(cfg NativeConfig) *Native {
	if cfg.Separator == "" {
		cfg.Separator = "\n"
	}
	return &Native{cfg: cfg}
}

func (n *Native) Extract(ctx context.Context, data []byte, password string) (text string, err error) {
	// The parser panics on some malformed documents; fold those into the
	// uniform extraction error like any other backend failure.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Engine: EngineNative, Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	if len(data) == 0 {
		return "", &ExtractionError{Engine: EngineNative, Err: fmt.Errorf("empty document")}
	}

	reader := bytes.NewReader(data)
	var doc *pdf.Reader
	if password != "" {
		doc, err = pdf.NewReaderEncrypted(reader, int64(len(data)), func() string { return password })
	} else {
		doc, err = pdf.NewReader(reader, int64(len(data)))
	}
	if err != nil {
		return "", &ExtractionError{Engine: EngineNative, Err: err}
	}

	var pages []string
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", &ExtractionError{Engine: EngineNative, Err: err}
		}

		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Engine: EngineNative, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		pages = append(pages, content)
	}

	return strings.TrimSpace(strings.Join(pages, n.cfg.Separator)), nil
}
