package extractor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// Runner executes external tools; tests stub it to avoid a poppler/tesseract
// install.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// writeTempPDF stores the document bytes beside its extraction, since the
// poppler tools only read from files. Callers must invoke cleanup.
func writeTempPDF(data []byte) (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "stmt-pdf-*")
	if err != nil {
		return "", nil, err
	}
	cleanup = func() { os.RemoveAll(dir) }

	path = dir + "/input.pdf"
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
