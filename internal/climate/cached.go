package climate

import (
	"context"
	"time"

	"github.com/npsdash/backend-go/internal/cache"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// CachedService reads through a MonthlyCache. Cache errors are logged and
// never fail the fetch.
type CachedService struct {
	next  models.MonthlyFetcher
	cache *cache.MonthlyCache
}

var _ models.MonthlyFetcher = (*CachedService)(nil)

func NewCachedService(next models.MonthlyFetcher, c *cache.MonthlyCache) *CachedService {
	return &CachedService{next: next, cache: c}
}

func (s *CachedService) FetchMonthlyMeans(ctx context.Context, stationID string, start, end time.Time, dataTypes []string) (models.MonthlyMeans, error) {
	if stationID == "" {
		return nil, ErrNoStation
	}
	if len(dataTypes) == 0 {
		dataTypes = DefaultDataTypes
	}

	key := cache.MonthlyKey{StationID: stationID, Start: start, End: end, DataTypes: dataTypes}
	means, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("station_id", stationID).Msg("Monthly cache read failed")
	}
	if ok {
		return means, nil
	}

	means, err = s.next.FetchMonthlyMeans(ctx, stationID, start, end, dataTypes)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Save(ctx, key, means); err != nil {
		log.Warn().Err(err).Str("station_id", stationID).Msg("Monthly cache write failed")
	}
	return means, nil
}
