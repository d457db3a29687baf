package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/metrics"
	"github.com/npsdash/backend-go/internal/models"
)

type monthlyEntry struct {
	Means     models.MonthlyMeans
	ExpiresAt time.Time
}

// MonthlyCache provides a two-layer cache (LRU, then DynamoDB) for monthly means.
// The DynamoDB layer is optional.
type MonthlyCache struct {
	lru          *lru.Cache[string, *monthlyEntry]
	dynamoCache  *DynamoMonthlyCache
	ttl          time.Duration
	clock        clockwork.Clock
	lruHits      atomic.Uint64
	lruMisses    atomic.Uint64
	dynamoHits   atomic.Uint64
	dynamoMisses atomic.Uint64
}

func NewMonthlyCache(cfg *config.CacheConfig, dynamoCache *DynamoMonthlyCache, clock clockwork.Clock) (*MonthlyCache, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	lruCache, err := lru.New[string, *monthlyEntry](cfg.MonthlyLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating monthly LRU cache: %w", err)
	}

	return &MonthlyCache{
		lru:         lruCache,
		dynamoCache: dynamoCache,
		ttl:         cfg.GetMonthlyLRUTTL(),
		clock:       clock,
	}, nil
}

// Get returns cached means; ok is false on a miss in every layer.
func (c *MonthlyCache) Get(ctx context.Context, key MonthlyKey) (models.MonthlyMeans, bool, error) {
	k := key.String()
	if entry, ok := c.lru.Get(k); ok {
		if c.clock.Now().Before(entry.ExpiresAt) {
			c.lruHits.Add(1)
			metrics.CacheRequestsTotal.WithLabelValues("monthly_lru", "hit").Inc()
			return entry.Means, true, nil
		}
		c.lru.Remove(k)
	}
	c.lruMisses.Add(1)
	metrics.CacheRequestsTotal.WithLabelValues("monthly_lru", "miss").Inc()

	if c.dynamoCache == nil {
		return nil, false, nil
	}

	record, err := c.dynamoCache.GetMeans(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("getting monthly means from DynamoDB: %w", err)
	}
	if record == nil {
		c.dynamoMisses.Add(1)
		metrics.CacheRequestsTotal.WithLabelValues("monthly_dynamo", "miss").Inc()
		return nil, false, nil
	}

	c.dynamoHits.Add(1)
	metrics.CacheRequestsTotal.WithLabelValues("monthly_dynamo", "hit").Inc()
	means := record.MonthlyMeans()
	c.addLRU(k, means)
	return means, true, nil
}

// Save stores means in both layers.
func (c *MonthlyCache) Save(ctx context.Context, key MonthlyKey, means models.MonthlyMeans) error {
	c.addLRU(key.String(), means)

	if c.dynamoCache == nil {
		return nil
	}
	if err := c.dynamoCache.SaveMeans(ctx, newMonthlyRecord(key, means)); err != nil {
		return fmt.Errorf("saving monthly means to DynamoDB: %w", err)
	}
	return nil
}

func (c *MonthlyCache) addLRU(key string, means models.MonthlyMeans) {
	c.lru.Add(key, &monthlyEntry{
		Means:     means,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

// GetCacheStats returns statistics about cache hits and misses
func (c *MonthlyCache) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":      c.lruHits.Load(),
		"lru_misses":    c.lruMisses.Load(),
		"dynamo_hits":   c.dynamoHits.Load(),
		"dynamo_misses": c.dynamoMisses.Load(),
	}
}

// Clear removes all entries from the LRU cache
func (c *MonthlyCache) Clear() {
	c.lru.Purge()
}
