// Package archive mirrors pipeline artifacts to Google Cloud Storage so a
// run's inputs and outputs survive local cleanup. Archival is best-effort:
// upload failures are logged by the caller and never fail the run.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single object upload.
const uploadTimeout = 2 * time.Minute

// Uploader copies local artifact files into a GCS bucket.
type Uploader struct {
	bucket string
	prefix string
}

// NewUploader returns nil when bucket is empty, which disables archival.
// Callers nil-check before use.
func NewUploader(bucket, prefix string) *Uploader {
	if bucket == "" {
		return nil
	}
	return &Uploader{bucket: bucket, prefix: prefix}
}

// UploadArtifacts pushes each local file under <prefix>/<statement>/<base>.
// It stops at the first failure; partial uploads are acceptable because
// the next run re-archives the same paths.
func (u *Uploader) UploadArtifacts(ctx context.Context, statement string, paths ...string) error {
	if u == nil {
		return nil
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		object := path.Join(u.prefix, statement, path.Base(p))
		if err := u.uploadFile(ctx, object, p); err != nil {
			return fmt.Errorf("UploadArtifacts: %w", err)
		}
	}
	return nil
}

// uploadFile uploads one local file to the bucket. Application Default
// Credentials are assumed (gcloud auth application-default login).
func (u *Uploader) uploadFile(ctx context.Context, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close GCS writer: %w", err)
	}
	return nil
}

// ObjectName reports where an artifact would land, for logging.
func (u *Uploader) ObjectName(statement, filePath string) string {
	if u == nil {
		return ""
	}
	return fmt.Sprintf("gs://%s/%s", u.bucket, path.Join(u.prefix, statement, path.Base(filePath)))
}
