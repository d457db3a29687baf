package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// Station lookup LRU
	LookupLRUSize       int
	LookupLRUTTLMinutes int

	// Monthly means LRU
	MonthlyLRUSize       int
	MonthlyLRUTTLMinutes int

	// DynamoDB monthly means cache
	MonthlyDynamoTable   string
	MonthlyDynamoTTLDays int

	EnableLRUCache    bool
	EnableDynamoCache bool
}

const (
	defaultLookupLRUSize        = 2000
	defaultLookupTTLMinutes     = 24 * 60
	defaultMonthlyLRUSize       = 1000
	defaultMonthlyTTLMinutes    = 60
	defaultMonthlyDynamoTable   = "monthly-temperature-cache"
	defaultMonthlyDynamoTTLDays = 30
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		LookupLRUSize:        getEnvInt("CACHE_LOOKUP_LRU_SIZE", defaultLookupLRUSize),
		LookupLRUTTLMinutes:  getEnvInt("CACHE_LOOKUP_LRU_TTL_MINUTES", defaultLookupTTLMinutes),
		MonthlyLRUSize:       getEnvInt("CACHE_MONTHLY_LRU_SIZE", defaultMonthlyLRUSize),
		MonthlyLRUTTLMinutes: getEnvInt("CACHE_MONTHLY_LRU_TTL_MINUTES", defaultMonthlyTTLMinutes),
		MonthlyDynamoTable:   getEnvOrDefault("CACHE_MONTHLY_DYNAMO_TABLE", defaultMonthlyDynamoTable),
		MonthlyDynamoTTLDays: getEnvInt("CACHE_MONTHLY_DYNAMO_TTL_DAYS", defaultMonthlyDynamoTTLDays),
		EnableLRUCache:       getEnvBool("CACHE_ENABLE_LRU", true),
		EnableDynamoCache:    getEnvBool("CACHE_ENABLE_DYNAMO", false),
	}

	log.Debug().
		Int("LookupLRUSize", config.LookupLRUSize).
		Int("LookupLRUTTLMinutes", config.LookupLRUTTLMinutes).
		Int("MonthlyLRUSize", config.MonthlyLRUSize).
		Int("MonthlyLRUTTLMinutes", config.MonthlyLRUTTLMinutes).
		Str("MonthlyDynamoTable", config.MonthlyDynamoTable).
		Int("MonthlyDynamoTTLDays", config.MonthlyDynamoTTLDays).
		Bool("EnableLRUCache", config.EnableLRUCache).
		Bool("EnableDynamoCache", config.EnableDynamoCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetLookupLRUTTL() time.Duration {
	return time.Duration(c.LookupLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetMonthlyLRUTTL() time.Duration {
	return time.Duration(c.MonthlyLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetDynamoTTL() time.Duration {
	return time.Duration(c.MonthlyDynamoTTLDays) * 24 * time.Hour
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
