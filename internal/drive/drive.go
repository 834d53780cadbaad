// Package drive is the file-store gateway: it lists and downloads binary
// files from Google Drive behind a backend-agnostic contract.
package drive

import (
	"context"
	"fmt"
	"strings"
)

// MIME types used by the pipeline's folder and file queries.
const (
	MimeTypeFolder = "application/vnd.google-apps.folder"
	MimeTypePDF    = "application/pdf"
)

// RemoteFile is an immutable descriptor of a file in the remote store.
type RemoteFile struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// Gateway lists and downloads files. The query string is a backend-specific
// filter expression; the gateway forwards it without interpreting it.
type Gateway interface {
	List(ctx context.Context, query string) ([]RemoteFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	DownloadToPath(ctx context.Context, fileID, path string) error
}

// GatewayError wraps every network and auth failure from the remote store
// so callers can tell store failures apart from local ones.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("drive gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// FolderQuery builds the exact-name folder lookup query.
func FolderQuery(name string) string {
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQueryTerm(name), MimeTypeFolder)
}

// PDFQuery builds the query for PDF files inside a folder.
func PDFQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed = false and mimeType = '%s'", escapeQueryTerm(folderID), MimeTypePDF)
}

// escapeQueryTerm escapes single quotes so a value like "Q1 '24" cannot
// terminate the quoted string in a Drive query.
func escapeQueryTerm(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}
