package station

import (
	"context"

	"github.com/npsdash/backend-go/internal/cache"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// CachedLocator serves repeated lookups for the same point from an LRU.
// Only resolved lookups are cached.
type CachedLocator struct {
	next  models.StationLocator
	cache *cache.LookupCache
}

var _ models.StationLocator = (*CachedLocator)(nil)

func NewCachedLocator(next models.StationLocator, c *cache.LookupCache) *CachedLocator {
	return &CachedLocator{next: next, cache: c}
}

func (l *CachedLocator) Locate(ctx context.Context, p models.Point) (*models.Resolution, error) {
	if !p.Defined() {
		return l.next.Locate(ctx, p)
	}

	if res, ok := l.cache.Get(p); ok {
		log.Debug().Str("point", p.String()).Str("station_id", res.StationID).Msg("Lookup cache hit")
		return res, nil
	}

	res, err := l.next.Locate(ctx, p)
	if err == nil {
		l.cache.Add(p, res)
	}
	return res, err
}
