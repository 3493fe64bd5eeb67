package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Remote cache tiers for Overpass responses
const (
	CacheBackendNone   = "none"
	CacheBackendDynamo = "dynamo"
	CacheBackendS3     = "s3"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// LRU Cache settings
	ElementLRUSize       int
	ElementLRUTTLMinutes int

	// Remote tier settings
	Backend        string
	DynamoTable    string
	S3Bucket       string
	RemoteTTLHours int

	EnableLRUCache bool
}

const (
	defaultElementLRUSize       = 500
	defaultElementLRUTTLMinutes = 10
	defaultRemoteTTLHours       = 6
	defaultDynamoTable          = "station-query-cache"
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		ElementLRUSize:       getEnvInt("CACHE_ELEMENT_LRU_SIZE", defaultElementLRUSize),
		ElementLRUTTLMinutes: getEnvInt("CACHE_ELEMENT_LRU_TTL_MINUTES", defaultElementLRUTTLMinutes),
		Backend:              parseBackend(os.Getenv("CACHE_BACKEND")),
		DynamoTable:          getEnvOrDefault("CACHE_DYNAMO_TABLE", defaultDynamoTable),
		S3Bucket:             os.Getenv("CACHE_S3_BUCKET"),
		RemoteTTLHours:       getEnvInt("CACHE_REMOTE_TTL_HOURS", defaultRemoteTTLHours),
		EnableLRUCache:       getEnvBool("CACHE_ENABLE_LRU", true),
	}

	log.Debug().
		Int("ElementLRUSize", config.ElementLRUSize).
		Int("ElementLRUTTLMinutes", config.ElementLRUTTLMinutes).
		Str("Backend", config.Backend).
		Str("DynamoTable", config.DynamoTable).
		Str("S3Bucket", config.S3Bucket).
		Int("RemoteTTLHours", config.RemoteTTLHours).
		Bool("EnableLRUCache", config.EnableLRUCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetElementLRUTTL() time.Duration {
	return time.Duration(c.ElementLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetRemoteTTL() time.Duration {
	return time.Duration(c.RemoteTTLHours) * time.Hour
}

func parseBackend(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case CacheBackendDynamo:
		return CacheBackendDynamo
	case CacheBackendS3:
		return CacheBackendS3
	case "", CacheBackendNone:
		return CacheBackendNone
	default:
		log.Warn().Str("backend", v).Msg("Unknown cache backend, remote cache disabled")
		return CacheBackendNone
	}
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
