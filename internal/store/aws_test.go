package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	rdsdatatypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func attrS(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.Truef(t, ok, "attribute %q is not a string: %#v", key, item[key])
	return v.Value
}

func TestDynamoInsert(t *testing.T) {
	fake := &fakeDynamo{}
	s := NewDynamoStore(fake, "edu-contents")
	s.newID = func() string { return "1234" }
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Insert(context.Background(), photosynthesis))
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	require.Equal(t, "edu-contents", aws.ToString(in.TableName))
	require.Equal(t, "attribute_not_exists(PK)", aws.ToString(in.ConditionExpression))

	item := in.Item
	require.Equal(t, "CONTENT#1234", attrS(t, item, "PK"))
	require.Equal(t, "META", attrS(t, item, "SK"))
	require.Equal(t, "Photosynthesis", attrS(t, item, "title"))
	require.Equal(t, "Multimédia", attrS(t, item, "subjectTag"))
	require.Equal(t, "Gemini-3", attrS(t, item, "levelTag"))
	require.Equal(t, "2026-03-01T10:00:00Z", attrS(t, item, "createdAt"))
}

func TestDynamoInsertError(t *testing.T) {
	cause := errors.New("ProvisionedThroughputExceededException")
	s := NewDynamoStore(&fakeDynamo{err: cause}, "edu-contents")

	err := s.Insert(context.Background(), photosynthesis)
	require.ErrorIs(t, err, cause)
}

type fakeDataAPI struct {
	inputs []*rdsdata.ExecuteStatementInput
	err    error
}

func (f *fakeDataAPI) ExecuteStatement(ctx context.Context, in *rdsdata.ExecuteStatementInput, _ ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &rdsdata.ExecuteStatementOutput{}, nil
}

func TestDataAPIInsert(t *testing.T) {
	fake := &fakeDataAPI{}
	s := NewDataAPIStore(fake, "arn:cluster", "arn:secret", "edu")

	require.NoError(t, s.Insert(context.Background(), photosynthesis))
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	require.Equal(t, "arn:cluster", aws.ToString(in.ResourceArn))
	require.Equal(t, "arn:secret", aws.ToString(in.SecretArn))
	require.Equal(t, "edu", aws.ToString(in.Database))
	require.Contains(t, aws.ToString(in.Sql), "INSERT INTO contents")

	got := map[string]string{}
	for _, p := range in.Parameters {
		v, ok := p.Value.(*rdsdatatypes.FieldMemberStringValue)
		require.True(t, ok)
		got[aws.ToString(p.Name)] = v.Value
	}
	require.Equal(t, map[string]string{
		"title":       "Photosynthesis",
		"body":        "Plants convert light into chemical energy.",
		"subject_tag": "Multimédia",
		"level_tag":   "Gemini-3",
	}, got)
}

func TestDataAPIInsertError(t *testing.T) {
	cause := errors.New("BadRequestException")
	s := NewDataAPIStore(&fakeDataAPI{err: cause}, "a", "b", "c")
	require.ErrorIs(t, s.Insert(context.Background(), photosynthesis), cause)
}
