package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
)

// Store is a DynamoDB implementation of the pdfstore.RecordStore interface.
// It leans on DynamoDB's native TTL support via the expires_at attribute,
// but still filters expired items on read because DynamoDB reclaims them
// lazily.
//
// Table schema:
//   - Partition key: record_key (string)
//   - TTL attribute: expires_at (number, epoch seconds)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name pdfstore-records \
//	  --attribute-definitions AttributeName=record_key,AttributeType=S \
//	  --key-schema AttributeName=record_key,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
//	aws dynamodb update-time-to-live \
//	  --table-name pdfstore-records \
//	  --time-to-live-specification Enabled=true,AttributeName=expires_at
type Store struct {
	client    Client
	tableName string
	now       func() time.Time
}

// Client is the interface for DynamoDB operations.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// New creates a new DynamoDB record store over the given table.
func New(client Client, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// Get returns the value for a key, treating expired items as absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"record_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	if resp.Item == nil {
		return nil, pdfstore.ErrRecordNotFound
	}

	if s.itemExpired(resp.Item) {
		return nil, pdfstore.ErrRecordNotFound
	}

	valueAttr, ok := resp.Item["value"].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("invalid value attribute for record %s", key)
	}

	return valueAttr.Value, nil
}

// Put writes a value, stamping the TTL attribute when a ttl is given.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	item := map[string]types.AttributeValue{
		"record_key": &types.AttributeValueMemberS{Value: key},
		"value":      &types.AttributeValueMemberB{Value: value},
	}
	if ttl > 0 {
		expiresAt := s.now().Add(ttl).Unix()
		item["expires_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt, 10)}
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put record %s: %w", key, err)
	}

	return nil
}

// Delete removes a key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"record_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}

	return nil
}

// List returns all live keys beginning with prefix. The single-attribute
// key schema leaves a filtered Scan as the only prefix query; listings here
// are small (one key per stored document).
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var startKey map[string]types.AttributeValue

	for {
		resp, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.tableName),
			FilterExpression: aws.String("begins_with(record_key, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: prefix},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list records: %w", err)
		}

		for _, item := range resp.Items {
			if s.itemExpired(item) {
				continue
			}
			keyAttr, ok := item["record_key"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			keys = append(keys, keyAttr.Value)
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	return keys, nil
}

func (s *Store) itemExpired(item map[string]types.AttributeValue) bool {
	expiresAttr, ok := item["expires_at"].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	expiresAt, err := strconv.ParseInt(expiresAttr.Value, 10, 64)
	if err != nil {
		return false
	}
	return s.now().Unix() >= expiresAt
}
