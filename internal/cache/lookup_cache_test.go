package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{
		LookupLRUSize:        10,
		LookupLRUTTLMinutes:  60,
		MonthlyLRUSize:       10,
		MonthlyLRUTTLMinutes: 60,
		MonthlyDynamoTable:   "test-table",
		MonthlyDynamoTTLDays: 30,
		EnableLRUCache:       true,
	}
}

func TestNewLookupCache(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "valid size", size: 10},
		{name: "zero size", size: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testCacheConfig()
			cfg.LookupLRUSize = tt.size

			c, err := NewLookupCache(cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestLookupCacheStoresResolvedOnly(t *testing.T) {
	c, err := NewLookupCache(testCacheConfig(), clockwork.NewFakeClock())
	require.NoError(t, err)

	p := models.Point{Latitude: 46.85, Longitude: -121.76}

	c.Add(p, &models.Resolution{Status: models.StatusNotFound, Attempts: 10})
	_, ok := c.Get(p)
	assert.False(t, ok)

	resolved := &models.Resolution{Status: models.StatusResolved, StationID: "GHCND:USC00456898", Attempts: 1}
	c.Add(p, resolved)

	got, ok := c.Get(models.Point{Latitude: 46.85001, Longitude: -121.76001})
	require.True(t, ok, "points within rounding share a key")
	assert.Equal(t, "GHCND:USC00456898", got.StationID)
	assert.Equal(t, 1, c.Len())
}

func TestLookupCacheExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, err := NewLookupCache(testCacheConfig(), clock)
	require.NoError(t, err)

	p := models.Point{Latitude: 36.1, Longitude: -112.1}
	c.Add(p, &models.Resolution{Status: models.StatusResolved, StationID: "GHCND:X"})

	clock.Advance(59 * time.Minute)
	_, ok := c.Get(p)
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get(p)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLookupKey(t *testing.T) {
	assert.Equal(t, "46.8000,-121.7000", lookupKey(models.Point{Latitude: 46.8, Longitude: -121.7}))
}
