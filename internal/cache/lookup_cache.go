package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/metrics"
	"github.com/npsdash/backend-go/internal/models"
)

// LookupCacheEntry wraps a resolved lookup with its expiry
type LookupCacheEntry struct {
	Resolution *models.Resolution
	ExpiresAt  time.Time
}

// LookupCache memoises resolved station lookups by rounded point.
type LookupCache struct {
	lru   *lru.Cache[string, *LookupCacheEntry]
	ttl   time.Duration
	clock clockwork.Clock
}

func NewLookupCache(cfg *config.CacheConfig, clock clockwork.Clock) (*LookupCache, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	lruCache, err := lru.New[string, *LookupCacheEntry](cfg.LookupLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating lookup LRU cache: %w", err)
	}

	return &LookupCache{
		lru:   lruCache,
		ttl:   cfg.GetLookupLRUTTL(),
		clock: clock,
	}, nil
}

// lookupKey rounds to 1e-4 degrees (about 11 m).
func lookupKey(p models.Point) string {
	return fmt.Sprintf("%.4f,%.4f", p.Latitude, p.Longitude)
}

func (c *LookupCache) Get(p models.Point) (*models.Resolution, bool) {
	key := lookupKey(p)
	entry, ok := c.lru.Get(key)
	if !ok {
		metrics.CacheRequestsTotal.WithLabelValues("lookup", "miss").Inc()
		return nil, false
	}
	if c.clock.Now().After(entry.ExpiresAt) {
		c.lru.Remove(key)
		metrics.CacheRequestsTotal.WithLabelValues("lookup", "expired").Inc()
		return nil, false
	}
	metrics.CacheRequestsTotal.WithLabelValues("lookup", "hit").Inc()
	return entry.Resolution, true
}

// Add stores res if it is a resolved lookup; failures are never cached.
func (c *LookupCache) Add(p models.Point, res *models.Resolution) {
	if !res.Resolved() {
		return
	}
	c.lru.Add(lookupKey(p), &LookupCacheEntry{
		Resolution: res,
		ExpiresAt:  c.clock.Now().Add(c.ttl),
	})
}

func (c *LookupCache) Len() int {
	return c.lru.Len()
}

func (c *LookupCache) Clear() {
	c.lru.Purge()
}
