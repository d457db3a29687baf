package station

import (
	"fmt"

	"github.com/npsdash/backend-go/internal/cache"
	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/models"
)

// LocatorFactory builds the station locator used by the binaries.
type LocatorFactory interface {
	NewLocator(client *cdo.Client, cfg *config.Config, cacheCfg *config.CacheConfig) (models.StationLocator, error)
}

type DefaultLocatorFactory struct{}

func (f *DefaultLocatorFactory) NewLocator(client *cdo.Client, cfg *config.Config, cacheCfg *config.CacheConfig) (models.StationLocator, error) {
	directory := NewCDODirectory(client, cfg.DataCategory, cfg.StationStartDate, cfg.PageCap)
	locator := NewLocator(directory, Options{
		PageCap:          cfg.PageCap,
		MaxAttempts:      cfg.MaxAttempts,
		InitialHalfWidth: cfg.InitialHalfWidth,
		RetryDelay:       cfg.RetryDelay,
	})

	if cacheCfg == nil || !cacheCfg.EnableLRUCache {
		return locator, nil
	}
	lookupCache, err := cache.NewLookupCache(cacheCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("creating lookup cache: %w", err)
	}
	return NewCachedLocator(locator, lookupCache), nil
}
