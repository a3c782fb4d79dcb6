package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	blob "github.com/edoomio/studio/internal/storage"
)

// Client stores objects in one Google Cloud Storage bucket.
type Client struct {
	client *storage.Client
	bucket string
}

// ClientOptions builds credentials from a JSON blob or a key file path.
// An empty value falls back to application default credentials.
func ClientOptions(credentials string) []option.ClientOption {
	creds := strings.TrimSpace(credentials)
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		return append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	return append(opts, option.WithCredentialsFile(creds))
}

func NewClient(ctx context.Context, bucket, credentials string) (*Client, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	st, err := storage.NewClient(ctx, ClientOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Client{client: st, bucket: bucket}, nil
}

func (c *Client) List(ctx context.Context, prefix string) ([]blob.FileInfo, error) {
	it := c.client.Bucket(c.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var files []blob.FileInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		files = append(files, fileInfo(attrs))
	}
	return files, nil
}

type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

// Download keeps its timeout context alive until the reader is closed.
func (c *Client) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := c.client.Bucket(c.bucket).Object(path).NewReader(ctx)
	if err != nil {
		cancel()
		return nil, translate(err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (c *Client) Upload(ctx context.Context, path string, content io.Reader, _ int64, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := c.client.Bucket(c.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, path string) error {
	err := c.client.Bucket(c.bucket).Object(path).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.GetMetadata(ctx, path)
	if errors.Is(err, blob.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (c *Client) GetMetadata(ctx context.Context, path string) (*blob.FileInfo, error) {
	attrs, err := c.client.Bucket(c.bucket).Object(path).Attrs(ctx)
	if err != nil {
		return nil, translate(err)
	}
	fi := fileInfo(attrs)
	return &fi, nil
}

// SignedURL returns a V4 signed GET URL. It needs credentials able to sign.
func (c *Client) SignedURL(_ context.Context, path string, expires time.Duration) (string, error) {
	return c.client.Bucket(c.bucket).SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expires),
	})
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

func fileInfo(attrs *storage.ObjectAttrs) blob.FileInfo {
	return blob.FileInfo{
		Path:        attrs.Name,
		Size:        attrs.Size,
		ModifiedAt:  attrs.Updated,
		ContentType: attrs.ContentType,
	}
}

func translate(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return blob.ErrNotFound
	}
	return err
}

var (
	_ blob.Client = (*Client)(nil)
	_ blob.Signer = (*Client)(nil)
)
