// Package extractor converts raw PDF bytes into plain text. Variants trade
// speed against OCR capability behind one contract; callers never see a
// backend-specific failure type.
package extractor

import (
	"context"
	"fmt"
)

// Extractor is the document-text contract. Password may be empty for
// unencrypted input.
type Extractor interface {
	Extract(ctx context.Context, data []byte, password string) (string, error)
}

// ExtractionError wraps every extraction failure (corrupt input, wrong or
// missing password, backend errors) uniformly.
type ExtractionError struct {
	Engine string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pdf extraction failed (%s): %v", e.Engine, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Supported engine names.
const (
	EnginePoppler = "poppler" // text layer via pdftotext, fastest
	EngineNative  = "native"  // pure Go parser, no external binaries
	EngineOCR     = "ocr"     // text layer with forced OCR for scanned documents
)

// New maps the configured engine name to a concrete variant with default
// settings. Unknown names fail fast instead of silently falling back.
func New(engine string) (Extractor, error) {
	switch engine {
	case EnginePoppler:
		return NewPoppler(PopplerConfig{}), nil
	case EngineNative:
		return NewNative(NativeConfig{}), nil
	case EngineOCR:
		return NewOCR(OCRConfig{}), nil
	default:
		return nil, fmt.Errorf("extractor.New: unsupported pdf_engine=%q", engine)
	}
}
