// Package cache memoizes distilled answers keyed by normalized query, with
// time-based expiry and at-most-one-computation-in-flight per key.
package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"webdistill/cache/inmemory"
	"webdistill/cache/redisstore"
	"webdistill/config"
	"webdistill/models"
)

// Store persists cache entries. Implementations need not enforce TTL; the
// Cache checks entry age on every read, so an expired entry is never served
// even if the store still holds it.
type Store interface {
	Get(ctx context.Context, key string) (models.CacheEntry, bool, error)
	Set(ctx context.Context, entry models.CacheEntry) error
	Delete(ctx context.Context, key string) error
}

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)

// NewStore creates the configured entry store.
func NewStore(ctx context.Context, cfg config.CacheConfig, redisCfg config.RedisConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case InMemoryStore:
		return inmemory.NewStore(), nil
	case RedisStore:
		return redisstore.NewStore(ctx, redisCfg.Host, redisCfg.Port, redisCfg.Password, redisCfg.DB, redisCfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported cache store type: %q", cfg.Store)
	}
}

// Cache wraps a Store with TTL semantics and per-key computation dedupe.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group
}

// New creates a result cache. now is the injected clock; pass time.Now
// outside tests.
func New(store Store, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{store: store, ttl: ttl, now: now}
}

// GetOrCompute returns the cached answer for query if a fresh entry exists,
// otherwise runs compute exactly once per key: concurrent callers for the
// same normalized query wait for and receive the in-flight result instead of
// recomputing. A compute failure propagates to every waiter and leaves the
// cache unpopulated. The second return value reports whether the answer came
// from the cache.
func (c *Cache) GetOrCompute(ctx context.Context, query models.Query, compute func(ctx context.Context) (models.AggregatedAnswer, error)) (models.AggregatedAnswer, bool, error) {
	key := query.Key()

	if answer, ok := c.lookup(ctx, key); ok {
		return answer, true, nil
	}

	hit := false
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A waiter may have been queued behind a compute that just finished;
		// re-check before paying for another pipeline run.
		if answer, ok := c.lookup(ctx, key); ok {
			hit = true
			return answer, nil
		}

		answer, err := compute(ctx)
		if err != nil {
			return models.AggregatedAnswer{}, fmt.Errorf("compute failed: %w", err)
		}
		entry := models.CacheEntry{
			Key:       key,
			Value:     answer,
			CreatedAt: c.now(),
			TTL:       c.ttl,
		}
		// A broken store degrades to recomputation, not to a failed request.
		_ = c.store.Set(ctx, entry)
		return answer, nil
	})
	if err != nil {
		return models.AggregatedAnswer{}, false, err
	}
	return v.(models.AggregatedAnswer), hit, nil
}

// lookup returns a fresh entry's value. Expiry is lazy: a stale entry is
// dropped on read and reported as a miss.
func (c *Cache) lookup(ctx context.Context, key string) (models.AggregatedAnswer, bool) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return models.AggregatedAnswer{}, false
	}
	if entry.Expired(c.now()) {
		_ = c.store.Delete(ctx, key)
		return models.AggregatedAnswer{}, false
	}
	return entry.Value, true
}
