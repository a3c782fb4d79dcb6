package cache

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/logger"
)

func setupCache(t *testing.T, ttl time.Duration) (*RedisRenderCache, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRenderCache(client, "test:render:", ttl, logger.Nop()), m
}

func TestRedisRenderCache_GetSet(t *testing.T) {
	c, _ := setupCache(t, time.Hour)
	ctx := context.Background()
	key := RenderKey{WorksheetID: "w1", Version: "v1", Locale: "CH", Solutions: true}

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, "pdf/w1/v1-ch-solutions.pdf"))

	blobKey, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pdf/w1/v1-ch-solutions.pdf", blobKey)

	other := key
	other.Solutions = false
	_, ok, err = c.Get(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRenderCache_TTL(t *testing.T) {
	c, m := setupCache(t, time.Minute)
	ctx := context.Background()
	key := RenderKey{WorksheetID: "w1", Version: "v1", Locale: "DE"}

	require.NoError(t, c.Set(ctx, key, "blob"))
	m.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRenderCache_Invalidate(t *testing.T) {
	c, m := setupCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, RenderKey{WorksheetID: "w1", Version: "v1", Locale: "DE"}, "a"))
	require.NoError(t, c.Set(ctx, RenderKey{WorksheetID: "w1", Version: "v2", Locale: "CH"}, "b"))
	require.NoError(t, c.Set(ctx, RenderKey{WorksheetID: "w2", Version: "v1", Locale: "DE"}, "c"))

	require.NoError(t, c.Invalidate(ctx, "w1"))

	assert.Equal(t, []string{"test:render:w2:v1:DE:0"}, m.Keys())
}

func TestNew_DisabledWithoutAddr(t *testing.T) {
	c, closeFn, err := New(context.Background(), config.Cache{}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, c)
	assert.NoError(t, closeFn())
}

func TestNew_Connects(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	c, closeFn, err := New(context.Background(), config.Cache{RedisAddr: m.Addr(), TTL: time.Hour}, logger.Nop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &RedisRenderCache{}, c)
}
