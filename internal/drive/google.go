package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	drivev3 "google.golang.org/api/drive/v3"
)

// GoogleDrive implements Gateway over the Drive v3 API.
type GoogleDrive struct {
	service *drivev3.Service
}

// List forwards the query and returns the matching file descriptors.
func (g *GoogleDrive) List(ctx context.Context, query string) ([]RemoteFile, error) {
	var files []RemoteFile
	pageToken := ""

	for {
		call := g.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, size)").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, &GatewayError{Op: "list", Err: err}
		}

		for _, f := range res.Files {
			files = append(files, RemoteFile{
				ID:       f.Id,
				Name:     f.Name,
				MimeType: f.MimeType,
				Size:     f.Size,
			})
		}

		pageToken = res.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

// Download returns the file content as bytes.
func (g *GoogleDrive) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := g.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, &GatewayError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Op: "download", Err: fmt.Errorf("reading body: %w", err)}
	}
	return data, nil
}

// DownloadToPath streams the file to disk. The content goes to a temporary
// sibling first and is renamed into place only when the download completed,
// so a truncated transfer is never mistaken for a finished artifact.
func (g *GoogleDrive) DownloadToPath(ctx context.Context, fileID, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &GatewayError{Op: "download_to_path", Err: fmt.Errorf("creating directory: %w", err)}
	}

	resp, err := g.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return &GatewayError{Op: "download_to_path", Err: err}
	}
	defer resp.Body.Close()

	tmp := path + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return &GatewayError{Op: "download_to_path", Err: fmt.Errorf("creating temp file: %w", err)}
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return &GatewayError{Op: "download_to_path", Err: fmt.Errorf("writing content: %w", err)}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &GatewayError{Op: "download_to_path", Err: fmt.Errorf("closing temp file: %w", err)}
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &GatewayError{Op: "download_to_path", Err: fmt.Errorf("finalizing file: %w", err)}
	}
	return nil
}
