package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	rdsdatatypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/edu-studio/internal/lesson"
)

// StatementExecutor is the slice of the RDS Data API client the store uses.
type StatementExecutor interface {
	ExecuteStatement(ctx context.Context, params *rdsdata.ExecuteStatementInput, optFns ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error)
}

const dataAPIInsertSQL = `INSERT INTO contents (title, body, subject_tag, level_tag)
		VALUES (:title, :body, :subject_tag, :level_tag)`

// DataAPIStore writes lessons to an Aurora cluster through the RDS Data API.
type DataAPIStore struct {
	client     StatementExecutor
	clusterARN string
	secretARN  string
	database   string
}

var _ ContentStore = (*DataAPIStore)(nil)

// NewDataAPIStore creates a DataAPIStore for the given cluster, credentials
// secret and database.
func NewDataAPIStore(client StatementExecutor, clusterARN, secretARN, database string) *DataAPIStore {
	return &DataAPIStore{
		client:     client,
		clusterARN: clusterARN,
		secretARN:  secretARN,
		database:   database,
	}
}

func stringParam(name, value string) rdsdatatypes.SqlParameter {
	return rdsdatatypes.SqlParameter{
		Name:  aws.String(name),
		Value: &rdsdatatypes.FieldMemberStringValue{Value: value},
	}
}

// Insert writes rec as a new row.
func (s *DataAPIStore) Insert(ctx context.Context, rec lesson.Record) error {
	params := []rdsdatatypes.SqlParameter{
		stringParam("title", rec.Title),
		stringParam("body", rec.Body),
		stringParam("subject_tag", rec.SubjectTag),
		stringParam("level_tag", rec.LevelTag),
	}
	_, err := s.client.ExecuteStatement(ctx, &rdsdata.ExecuteStatementInput{
		ResourceArn: aws.String(s.clusterARN),
		SecretArn:   aws.String(s.secretARN),
		Database:    aws.String(s.database),
		Sql:         aws.String(dataAPIInsertSQL),
		Parameters:  params,
	})
	if err != nil {
		log.Error().Err(err).Str("title", rec.Title).Msg("Data API insert failed")
		return fmt.Errorf("insert into %s: %w", ContentsTable, err)
	}
	return nil
}

// Close is a no-op; the Data API is stateless.
func (s *DataAPIStore) Close() error {
	return nil
}
