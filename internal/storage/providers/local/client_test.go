package local

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edoomio/studio/internal/storage"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestClient_UploadDownload(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, storage.UploadBytes(ctx, c, "pdf/w1/v1-de.pdf", []byte("%PDF-1.7"), "application/pdf"))

	data, err := storage.ReadAll(ctx, c, "pdf/w1/v1-de.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	meta, err := c.GetMetadata(ctx, "pdf/w1/v1-de.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(8), meta.Size)
	assert.Equal(t, "application/pdf", meta.ContentType)
}

func TestClient_MissingObject(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.Download(ctx, "pdf/none.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	exists, err := c.Exists(ctx, "pdf/none.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, c.Delete(ctx, "pdf/none.pdf"))
}

func TestClient_PathsStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, storage.UploadBytes(ctx, c, "../../escape.pdf", []byte("x"), ""))
	files, err := c.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "escape.pdf", files[0].Path)
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for _, key := range []string{"pdf/w1/a.pdf", "pdf/w1/b.pdf", "pdf/w2/a.pdf"} {
		require.NoError(t, c.Upload(ctx, key, strings.NewReader(key), -1, ""))
	}

	deleted, err := storage.DeletePrefix(ctx, c, storage.PDFPrefix("w1"))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	files, err := c.List(ctx, "pdf/")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "pdf/w2/a.pdf", files[0].Path)
}
