package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/models"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const s3KeyPrefix = "overpass/"

// S3ElementStore caches Overpass responses as JSON objects in a bucket
type S3ElementStore struct {
	client     S3Client
	bucketName string
	ttl        time.Duration
	clock      clock
}

var _ ElementStore = (*S3ElementStore)(nil)

func NewS3ElementStore(client S3Client, bucketName string, ttl time.Duration) *S3ElementStore {
	return &S3ElementStore{
		client:     client,
		bucketName: bucketName,
		ttl:        ttl,
		clock:      systemClock{},
	}
}

func objectKey(key string) string {
	return s3KeyPrefix + key + ".json"
}

func (s *S3ElementStore) GetElements(ctx context.Context, key string) ([]models.Element, bool, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("getting elements from S3: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	var record ElementCacheRecord
	if err := json.NewDecoder(result.Body).Decode(&record); err != nil {
		return nil, false, fmt.Errorf("decoding cache record: %w", err)
	}

	if s.clock.Now().Unix() >= record.TTL {
		log.Debug().Str("query_key", key).Msg("Element cache object expired")
		return nil, false, nil
	}

	if record.Elements == nil {
		record.Elements = []models.Element{}
	}
	return record.Elements, true, nil
}

func (s *S3ElementStore) SaveElements(ctx context.Context, key string, elements []models.Element) error {
	now := s.clock.Now().Unix()
	record := ElementCacheRecord{
		QueryKey:    key,
		Elements:    elements,
		LastUpdated: now,
		TTL:         now + int64(s.ttl.Seconds()),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(record); err != nil {
		return fmt.Errorf("encoding cache record: %w", err)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey(key)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("saving to S3: %w", err)
	}

	log.Debug().Str("query_key", key).Int("element_count", len(elements)).Msg("Saved elements to S3 cache")
	return nil
}
