package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/similar/internal/db"
	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/cache"
)

// DefaultPrefix namespaces result entries inside the shared store.
const DefaultPrefix = domain.KeyPrefix + "results:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
}

// Cache keeps ranked id lists in a key-value store.
type Cache struct {
	store      store
	prefix     string
	cacheTotal *prometheus.CounterVec
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:      s,
		prefix:     DefaultPrefix,
		cacheTotal: cacheTotal,
		now:        time.Now,
		logger:     logger,
	}
}

// WithPrefix sets the key namespace. FlushAll removes everything under it.
func (c *Cache) WithPrefix(prefix string) *Cache {
	c.prefix = prefix
	return c
}

// WithClock replaces the time source (tests).
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get looks up a ranking. Backend and decode failures are reported as Unavailable.
func (c *Cache) Get(ctx context.Context, key string) cache.Lookup {
	lookup := c.get(ctx, key)
	c.incCache(lookup.Status.String())
	return lookup
}

func (c *Cache) get(ctx context.Context, key string) cache.Lookup {
	data, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return cache.MissResult()
		}
		return cache.UnavailableResult(fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err))
	}

	var e cache.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return cache.UnavailableResult(fmt.Errorf("%w: decode entry: %w", domain.ErrCacheUnavailable, err))
	}
	// Backends without native expiry (or with clock skew) may still hold it.
	if e.Expired(c.now()) {
		return cache.MissResult()
	}
	e.Key = key
	if e.IDs == nil {
		e.IDs = []string{}
	}
	return cache.HitResult(e)
}

// Set stores a ranking. ttl <= 0 keeps it until the next flush.
func (c *Cache) Set(ctx context.Context, key string, ids []string, ttl time.Duration) error {
	e := cache.Entry{IDs: ids}
	if e.IDs == nil {
		e.IDs = []string{}
	}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl).UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, c.prefix+key, data, ttl); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// FlushAll drops every entry under the prefix. The prefix is matched literally.
func (c *Cache) FlushAll(ctx context.Context) error {
	keys, err := c.store.Scan(ctx, db.EscapeGlob(c.prefix)+"*")
	if err != nil {
		return fmt.Errorf("%w: scan: %w", domain.ErrCacheUnavailable, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("%w: delete: %w", domain.ErrCacheUnavailable, err)
	}
	c.logger.Debug("Result cache flushed", zap.Int("entries", len(keys)))
	return nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
