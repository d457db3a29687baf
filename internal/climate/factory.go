package climate

import (
	"context"
	"fmt"

	"github.com/npsdash/backend-go/internal/cache"
	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// NewFetcher returns the monthly fetcher, wrapped in the configured cache
// layers.
func NewFetcher(ctx context.Context, client *cdo.Client, cacheCfg *config.CacheConfig) (models.MonthlyFetcher, error) {
	svc := NewService(client, DefaultPageLimit)
	if cacheCfg == nil || !cacheCfg.EnableLRUCache {
		return svc, nil
	}

	var dynamoCache *cache.DynamoMonthlyCache
	if cacheCfg.EnableDynamoCache {
		dynamoClient, err := cache.NewDynamoClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		dynamoCache = cache.NewDynamoMonthlyCache(dynamoClient, cacheCfg.MonthlyDynamoTable, cacheCfg.GetDynamoTTL(), nil)
		log.Debug().Str("table", cacheCfg.MonthlyDynamoTable).Msg("Monthly DynamoDB cache enabled")
	}

	monthlyCache, err := cache.NewMonthlyCache(cacheCfg, dynamoCache, nil)
	if err != nil {
		return nil, fmt.Errorf("creating monthly cache: %w", err)
	}
	return NewCachedService(svc, monthlyCache), nil
}
