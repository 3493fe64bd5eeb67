package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/models"
)

// DynamoElementStore caches Overpass responses in a DynamoDB table keyed by
// queryKey. The ttl attribute doubles as the table's TTL attribute.
type DynamoElementStore struct {
	client    DynamoDBClient
	tableName string
	ttl       time.Duration
	clock     clock
}

var _ ElementStore = (*DynamoElementStore)(nil)

func NewDynamoElementStore(client DynamoDBClient, tableName string, ttl time.Duration) *DynamoElementStore {
	return &DynamoElementStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		clock:     systemClock{},
	}
}

func (s *DynamoElementStore) GetElements(ctx context.Context, key string) ([]models.Element, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"queryKey": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("getting elements from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, false, nil
	}

	var record ElementCacheRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, false, fmt.Errorf("unmarshaling element record: %w", err)
	}

	// DynamoDB deletes expired items lazily
	if s.clock.Now().Unix() >= record.TTL {
		log.Debug().Str("query_key", key).Msg("Element cache record expired")
		return nil, false, nil
	}

	if record.Elements == nil {
		record.Elements = []models.Element{}
	}
	return record.Elements, true, nil
}

func (s *DynamoElementStore) SaveElements(ctx context.Context, key string, elements []models.Element) error {
	now := s.clock.Now().Unix()
	record := ElementCacheRecord{
		QueryKey:    key,
		Elements:    elements,
		LastUpdated: now,
		TTL:         now + int64(s.ttl.Seconds()),
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshaling element record: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("putting elements in DynamoDB: %w", err)
	}

	log.Debug().Str("query_key", key).Int("element_count", len(elements)).Msg("Saved elements to DynamoDB cache")
	return nil
}
