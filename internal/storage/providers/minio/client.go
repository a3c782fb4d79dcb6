package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/edoomio/studio/internal/storage"
)

// Config holds the connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client is a thin wrapper around the minio client bound to one bucket.
type Client struct {
	client *minio.Client
	bucket string
}

// NewClient connects to MinIO and ensures the bucket exists.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	c := &Client{client: mc, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		exists, xerr := mc.BucketExists(ctx, c.bucket)
		if xerr != nil || !exists {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return c, nil
}

func (c *Client) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	var files []storage.FileInfo
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		files = append(files, fileInfo(obj))
	}
	return files, nil
}

func (c *Client) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	// GetObject is lazy; stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, translate(err)
	}
	return obj, nil
}

func (c *Client) Upload(ctx context.Context, path string, content io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, path, content, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.client.RemoveObject(ctx, c.bucket, path, minio.RemoveObjectOptions{})
}

func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.GetMetadata(ctx, path)
	if err == storage.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (c *Client) GetMetadata(ctx context.Context, path string) (*storage.FileInfo, error) {
	obj, err := c.client.StatObject(ctx, c.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	fi := fileInfo(obj)
	return &fi, nil
}

// SignedURL returns a presigned GET URL valid for the given duration.
func (c *Client) SignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	presigned, err := c.client.PresignedGetObject(ctx, c.bucket, path, expires, make(url.Values))
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

func fileInfo(obj minio.ObjectInfo) storage.FileInfo {
	return storage.FileInfo{
		Path:        obj.Key,
		Size:        obj.Size,
		ModifiedAt:  obj.LastModified,
		ContentType: obj.ContentType,
	}
}

func translate(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return storage.ErrNotFound
	}
	return err
}

var (
	_ storage.Client = (*Client)(nil)
	_ storage.Signer = (*Client)(nil)
)
