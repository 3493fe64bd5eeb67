package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/models"
)

// ElementStore is a remote cache tier for Overpass responses
type ElementStore interface {
	GetElements(ctx context.Context, key string) ([]models.Element, bool, error)
	SaveElements(ctx context.Context, key string, elements []models.Element) error
}

// ElementCacheRecord is what remote tiers persist per query
type ElementCacheRecord struct {
	QueryKey    string           `json:"queryKey" dynamodbav:"queryKey"`
	Elements    []models.Element `json:"elements" dynamodbav:"elements"`
	LastUpdated int64            `json:"lastUpdated" dynamodbav:"lastUpdated"`
	TTL         int64            `json:"ttl" dynamodbav:"ttl"`
}

// QueryKey derives a stable cache key from query text
func QueryKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// NewRemoteStore builds the remote tier selected by the cache configuration.
// It returns nil when no remote tier is configured.
func NewRemoteStore(ctx context.Context, cfg *config.CacheConfig) (ElementStore, error) {
	switch cfg.Backend {
	case config.CacheBackendDynamo:
		client, err := NewDynamoClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		log.Info().Str("table", cfg.DynamoTable).Msg("Using DynamoDB element cache")
		return NewDynamoElementStore(client, cfg.DynamoTable, cfg.GetRemoteTTL()), nil
	case config.CacheBackendS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("CACHE_S3_BUCKET is required for the s3 cache backend")
		}
		awsCfg, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Using S3 element cache")
		return NewS3ElementStore(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.GetRemoteTTL()), nil
	default:
		return nil, nil
	}
}
