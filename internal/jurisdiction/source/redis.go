package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"notaryfix/internal/jurisdiction/models"
)

// DefaultCacheKey holds the shared dataset snapshot.
const DefaultCacheKey = "notaryfix:dataset:v1"

// Cached serves the dataset from a Redis snapshot so a fleet of instances
// does not hammer the primary source on every refresh. Cache failures fall
// through to the inner source.
type Cached struct {
	inner  Source
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// CachedOption configures a Cached source.
type CachedOption func(*Cached)

// WithCacheKey overrides DefaultCacheKey.
func WithCacheKey(key string) CachedOption {
	return func(c *Cached) { c.key = key }
}

func WithCacheLogger(l *slog.Logger) CachedOption {
	return func(c *Cached) { c.logger = l }
}

// NewCached wraps inner with a Redis snapshot that expires after ttl.
func NewCached(inner Source, client *redis.Client, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{
		inner:  inner,
		client: client,
		key:    DefaultCacheKey,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Cached) Name() string { return c.inner.Name() + "+redis" }

func (c *Cached) Load(ctx context.Context) (models.Dataset, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var ds models.Dataset
		jsonErr := json.Unmarshal(raw, &ds)
		if jsonErr == nil {
			return ds, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt dataset snapshot", "key", c.key, "error", jsonErr)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "dataset cache unavailable", "key", c.key, "error", err)
	}

	ds, err := c.inner.Load(ctx)
	if err != nil {
		return models.Dataset{}, err
	}
	c.store(ctx, ds)
	return ds, nil
}

// Invalidate drops the shared snapshot.
func (c *Cached) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidate dataset cache: %w", err)
	}
	return nil
}

func (c *Cached) store(ctx context.Context, ds models.Dataset) {
	raw, err := json.Marshal(ds)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode dataset snapshot", "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to cache dataset snapshot", "key", c.key, "error", err)
	}
}
