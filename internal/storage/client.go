package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrNotFound is returned when an object does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// FileInfo contains metadata about a stored object
type FileInfo struct {
	Path        string
	Size        int64
	ModifiedAt  time.Time
	ContentType string
}

// Client defines the interface for blob storage operations
type Client interface {
	// List returns objects whose key starts with prefix
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// Download retrieves the contents of an object
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Upload writes content to an object path. size may be -1 when unknown.
	Upload(ctx context.Context, path string, content io.Reader, size int64, contentType string) error

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata retrieves object info without downloading content
	GetMetadata(ctx context.Context, path string) (*FileInfo, error)
}

// Signer is implemented by providers that can hand out time-limited download URLs.
type Signer interface {
	SignedURL(ctx context.Context, path string, expires time.Duration) (string, error)
}

// UploadBytes stores data under path.
func UploadBytes(ctx context.Context, client Client, path string, data []byte, contentType string) error {
	return client.Upload(ctx, path, bytes.NewReader(data), int64(len(data)), contentType)
}

// ReadAll downloads an object into memory.
func ReadAll(ctx context.Context, client Client, path string) ([]byte, error) {
	reader, err := client.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// DeletePrefix removes every object under prefix and returns how many were deleted.
func DeletePrefix(ctx context.Context, client Client, prefix string) (int, error) {
	files, err := client.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, f := range files {
		if err := client.Delete(ctx, f.Path); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", f.Path, err)
		}
		deleted++
	}
	return deleted, nil
}

// PDFKey builds the object key of a rendered worksheet PDF.
func PDFKey(worksheetID, version, locale string, solutions bool) string {
	name := version + "-" + strings.ToLower(locale)
	if solutions {
		name += "-solutions"
	}
	return "pdf/" + worksheetID + "/" + name + ".pdf"
}

// PDFPrefix is the key prefix shared by every rendering of a worksheet.
func PDFPrefix(worksheetID string) string {
	return "pdf/" + worksheetID + "/"
}
