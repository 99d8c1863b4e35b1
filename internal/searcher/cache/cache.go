package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/resilience"
)

const keyPrefix = "search:"

// Store is the key-value backend, normally a *pkgredis.Client.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Key identifies one cacheable query. Fingerprint ties the entry to the
// index it was computed against.
type Key struct {
	Query       string
	Mode        executor.Mode
	Limit       int
	Fingerprint string
}

type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache over store. m may be nil. Store calls go through a
// circuit breaker, so an unreachable backend degrades to cache misses.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store: store,
		ttl:   ttl,
		breaker: resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     10 * time.Second,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, k Key) (*executor.SearchResult, bool) {
	key := buildKey(k)
	var data []byte
	found := false
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil || !found {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Debug("cache bypassed", "key", key, "error", err)
		} else if err != nil {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "query", k.Query, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, k Key, result *executor.SearchResult) {
	key := buildKey(k)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		c.logger.Debug("cache set skipped", "key", key, "error", err)
	case err != nil:
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for k, or runs computeFn once per
// key across concurrent callers and caches what it returns. Errors are not
// cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	k Key,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, k); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(buildKey(k), func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, k, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports whether the backend is currently being bypassed.
func (c *QueryCache) BreakerState() string {
	return c.breaker.State().String()
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey hashes the query with white space collapsed. Case is kept since
// AND and OR are operators only in upper case.
func buildKey(k Key) string {
	normalized := strings.Join(strings.Fields(k.Query), " ")
	raw := fmt.Sprintf("%s|%s|limit=%d|%s", k.Mode, normalized, k.Limit, k.Fingerprint)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
