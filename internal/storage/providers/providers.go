// Package providers selects the blob storage backend from configuration.
package providers

import (
	"context"
	"fmt"

	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/storage"
	"github.com/edoomio/studio/internal/storage/providers/gcs"
	"github.com/edoomio/studio/internal/storage/providers/local"
	"github.com/edoomio/studio/internal/storage/providers/minio"
)

// New builds the storage client named by cfg.Provider.
func New(ctx context.Context, cfg config.Storage, log *logger.Logger) (storage.Client, error) {
	switch cfg.Provider {
	case config.StorageLocal, "":
		log.Info("Using local blob storage", "dir", cfg.LocalDir)
		return local.NewClient(cfg.LocalDir)
	case config.StorageMinIO:
		log.Info("Using MinIO blob storage", "endpoint", cfg.MinIOEndpoint, "bucket", cfg.Bucket)
		return minio.NewClient(ctx, minio.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	case config.StorageGCS:
		log.Info("Using GCS blob storage", "bucket", cfg.Bucket)
		return gcs.NewClient(ctx, cfg.Bucket, cfg.GCSCredentials)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
