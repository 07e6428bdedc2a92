package source

import (
	"context"
	"fmt"

	"pricing-service/internal/pricing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI interface for mocking
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// pricingRecord is the item layout in the pricing table
type pricingRecord struct {
	ID     string                `dynamodbav:"id"`
	Prices pricing.PricingConfig `dynamodbav:"prices"`
}

// DynamoDBSource reads the pricing document from a single DynamoDB item
type DynamoDBSource struct {
	client    DynamoDBAPI
	tableName string
	key       string
}

func NewDynamoDBSource(client DynamoDBAPI, tableName, key string) *DynamoDBSource {
	return &DynamoDBSource{
		client:    client,
		tableName: tableName,
		key:       key,
	}
}

func (d *DynamoDBSource) Name() string {
	return "dynamodb"
}

func (d *DynamoDBSource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: d.key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing item: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, d.tableName, d.key)
	}

	var record pricingRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pricing item: %w", err)
	}

	return validated(&record.Prices)
}

// Seed writes cfg as the pricing item, used to bootstrap an empty table
func (d *DynamoDBSource) Seed(ctx context.Context, cfg *pricing.PricingConfig) error {
	item, err := attributevalue.MarshalMap(pricingRecord{ID: d.key, Prices: *cfg})
	if err != nil {
		return fmt.Errorf("failed to marshal pricing item: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put pricing item: %w", err)
	}

	return nil
}
