package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/edoomio/studio/internal/storage"
)

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Bucket: "studio"})
	assert.Error(t, err)
}

func TestTranslate(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", Message: "gone"}
	assert.ErrorIs(t, translate(missing), storage.ErrNotFound)

	other := errors.New("connection refused")
	assert.Equal(t, other, translate(other))
}
