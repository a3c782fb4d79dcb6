// Package cache remembers which blob holds the PDF for a given document version,
// so unchanged worksheets are not rendered twice.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/logger"
)

const defaultPrefix = "render:"

// RenderKey identifies one rendering of one worksheet version.
type RenderKey struct {
	WorksheetID string
	Version     string
	Locale      string
	Solutions   bool
}

// RenderCache maps render keys to blob keys.
type RenderCache interface {
	Get(ctx context.Context, key RenderKey) (string, bool, error)
	Set(ctx context.Context, key RenderKey, blobKey string) error
	Invalidate(ctx context.Context, worksheetID string) error
}

// RedisRenderCache stores entries as plain strings with a TTL.
type RedisRenderCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisRenderCache(client *redis.Client, prefix string, ttl time.Duration, log *logger.Logger) *RedisRenderCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisRenderCache{client: client, prefix: prefix, ttl: ttl, log: log.With("component", "render_cache")}
}

// New returns a Redis-backed cache, or a no-op cache when no address is configured.
func New(ctx context.Context, cfg config.Cache, log *logger.Logger) (RenderCache, func() error, error) {
	if cfg.RedisAddr == "" {
		log.Info("Render cache disabled (REDIS_ADDR not set)")
		return Nop{}, func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Render cache connected", "addr", cfg.RedisAddr)
	return NewRedisRenderCache(client, "", cfg.TTL, log), client.Close, nil
}

func (c *RedisRenderCache) key(k RenderKey) string {
	sol := "0"
	if k.Solutions {
		sol = "1"
	}
	return c.prefix + k.WorksheetID + ":" + k.Version + ":" + k.Locale + ":" + sol
}

func (c *RedisRenderCache) Get(ctx context.Context, k RenderKey) (string, bool, error) {
	v, err := c.client.Get(ctx, c.key(k)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisRenderCache) Set(ctx context.Context, k RenderKey, blobKey string) error {
	return c.client.Set(ctx, c.key(k), blobKey, c.ttl).Err()
}

// Invalidate drops every cached version of a worksheet.
func (c *RedisRenderCache) Invalidate(ctx context.Context, worksheetID string) error {
	pattern := c.prefix + worksheetID + ":*"
	var cursor uint64
	removed := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if removed > 0 {
		c.log.Debug("Invalidated render cache", "worksheet_id", worksheetID, "keys", removed)
	}
	return nil
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, RenderKey) (string, bool, error) { return "", false, nil }
func (Nop) Set(context.Context, RenderKey, string) error         { return nil }
func (Nop) Invalidate(context.Context, string) error             { return nil }

var (
	_ RenderCache = (*RedisRenderCache)(nil)
	_ RenderCache = Nop{}
)
