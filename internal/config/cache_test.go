package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetCacheConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected *CacheConfig
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			expected: &CacheConfig{
				LookupLRUSize:        defaultLookupLRUSize,
				LookupLRUTTLMinutes:  defaultLookupTTLMinutes,
				MonthlyLRUSize:       defaultMonthlyLRUSize,
				MonthlyLRUTTLMinutes: defaultMonthlyTTLMinutes,
				MonthlyDynamoTable:   defaultMonthlyDynamoTable,
				MonthlyDynamoTTLDays: defaultMonthlyDynamoTTLDays,
				EnableLRUCache:       true,
				EnableDynamoCache:    false,
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"CACHE_LOOKUP_LRU_SIZE":         "10",
				"CACHE_LOOKUP_LRU_TTL_MINUTES":  "5",
				"CACHE_MONTHLY_LRU_SIZE":        "20",
				"CACHE_MONTHLY_LRU_TTL_MINUTES": "15",
				"CACHE_MONTHLY_DYNAMO_TABLE":    "custom-table",
				"CACHE_MONTHLY_DYNAMO_TTL_DAYS": "7",
				"CACHE_ENABLE_LRU":              "false",
				"CACHE_ENABLE_DYNAMO":           "yes",
			},
			expected: &CacheConfig{
				LookupLRUSize:        10,
				LookupLRUTTLMinutes:  5,
				MonthlyLRUSize:       20,
				MonthlyLRUTTLMinutes: 15,
				MonthlyDynamoTable:   "custom-table",
				MonthlyDynamoTTLDays: 7,
				EnableLRUCache:       false,
				EnableDynamoCache:    true,
			},
		},
		{
			name: "invalid integers fall back to defaults",
			envVars: map[string]string{
				"CACHE_LOOKUP_LRU_SIZE": "lots",
			},
			expected: &CacheConfig{
				LookupLRUSize:        defaultLookupLRUSize,
				LookupLRUTTLMinutes:  defaultLookupTTLMinutes,
				MonthlyLRUSize:       defaultMonthlyLRUSize,
				MonthlyLRUTTLMinutes: defaultMonthlyTTLMinutes,
				MonthlyDynamoTable:   defaultMonthlyDynamoTable,
				MonthlyDynamoTTLDays: defaultMonthlyDynamoTTLDays,
				EnableLRUCache:       true,
				EnableDynamoCache:    false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			assert.Equal(t, tt.expected, GetCacheConfig())
		})
	}
}

func TestCacheConfigDurations(t *testing.T) {
	cfg := &CacheConfig{
		LookupLRUTTLMinutes:  90,
		MonthlyLRUTTLMinutes: 15,
		MonthlyDynamoTTLDays: 2,
	}

	assert.Equal(t, 90*time.Minute, cfg.GetLookupLRUTTL())
	assert.Equal(t, 15*time.Minute, cfg.GetMonthlyLRUTTL())
	assert.Equal(t, 48*time.Hour, cfg.GetDynamoTTL())
}
