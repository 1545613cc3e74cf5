package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/edu-studio/internal/lesson"
)

// DynamoDB key constants for the single-table design. Each lesson is one
// item: PK=CONTENT#{id}, SK=META.
const (
	pkPrefix = "CONTENT#"
	skMeta   = "META"
)

// DynamoPutter is the slice of the DynamoDB client the store uses.
type DynamoPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore writes lessons as DynamoDB items.
type DynamoStore struct {
	client    DynamoPutter
	tableName string
	newID     func() string
	now       func() time.Time
}

var _ ContentStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client DynamoPutter, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// contentPK returns the partition key for a lesson.
func contentPK(id string) string {
	return pkPrefix + id
}

// Insert writes rec as a new item. The condition on PK makes the write fail
// rather than overwrite an existing item.
func (s *DynamoStore) Insert(ctx context.Context, rec lesson.Record) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	id := s.newID()
	pk := contentPK(id)
	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: skMeta}
	item["id"] = &types.AttributeValueMemberS{Value: id}
	item["createdAt"] = &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s SK=%s: %w", pk, skMeta, err)
	}
	log.Debug().Str("table", s.tableName).Str("pk", pk).Msg("Lesson item written")
	return nil
}

// Close is a no-op; the SDK client holds no per-store resources.
func (s *DynamoStore) Close() error {
	return nil
}
