package entrypoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/logger"
)

func TestResolveCSRFSecret(t *testing.T) {
	t.Run("hex secret is decoded", func(t *testing.T) {
		secret, err := resolveCSRFSecret("00ff10")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0xff, 0x10}, secret)
	})

	t.Run("non-hex secret is used as is", func(t *testing.T) {
		secret, err := resolveCSRFSecret("not hex at all")
		require.NoError(t, err)
		assert.Equal(t, []byte("not hex at all"), secret)
	})

	t.Run("empty secret is generated", func(t *testing.T) {
		a, err := resolveCSRFSecret("")
		require.NoError(t, err)
		b, err := resolveCSRFSecret("")
		require.NoError(t, err)
		assert.Len(t, a, 32)
		assert.NotEqual(t, a, b)
	})
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STUDIO_ENCRYPTION_KEY", "")

	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(dir, "studio.db")
	cfg.Translation.EncryptionKeyPath = filepath.Join(dir, "keys", "studio.key")
	cfg.Storage.Provider = config.StorageLocal
	cfg.Storage.LocalDir = filepath.Join(dir, "blobs")

	app, err := Build(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)

	assert.NoError(t, app.DB.Ping())
	assert.NotNil(t, app.Rendering)
	assert.NotNil(t, app.Translation)
	assert.FileExists(t, cfg.Translation.EncryptionKeyPath)
	assert.NoError(t, app.Close())
}

func TestBuildRejectsUnknownStorage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STUDIO_ENCRYPTION_KEY", "")

	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(dir, "studio.db")
	cfg.Translation.EncryptionKeyPath = filepath.Join(dir, "studio.key")
	cfg.Storage.Provider = "ftp"

	_, err := Build(context.Background(), cfg, logger.Nop())
	assert.ErrorContains(t, err, "unknown storage provider")
}

func TestTaskQueueCloseCancelsContext(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STUDIO_ENCRYPTION_KEY", "")

	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(dir, "studio.db")
	cfg.Translation.EncryptionKeyPath = filepath.Join(dir, "studio.key")
	cfg.Storage.Provider = config.StorageLocal
	cfg.Storage.LocalDir = filepath.Join(dir, "blobs")
	cfg.Tasks.Enabled = true

	app, err := Build(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	queue, err := startTaskQueue(cfg, app, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, queue.ctx.Err())
	assert.NoError(t, queue.client.Ping())
	assert.FileExists(t, filepath.Join(dir, "studio-tasks.db"))

	// close without shutdown, as on an early error return from Run
	queue.close()
	assert.ErrorIs(t, queue.ctx.Err(), context.Canceled)
	assert.Error(t, queue.client.Ping())
}
