package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const pdfContentType = "application/pdf"

// S3Putter is the slice of the S3 client the uploader uses.
type S3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader uploads exported documents under a key prefix of a bucket.
type S3Uploader struct {
	client S3Putter
	bucket string
	prefix string
}

// NewS3Uploader creates an uploader for bucket. Keys are prefix/name.
func NewS3Uploader(client S3Putter, bucket, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix}
}

// Upload stores data as prefix/name and returns its s3:// URI.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(u.prefix, name)
	contentType := pdfContentType

	log.Debug().Str("bucket", u.bucket).Str("key", key).Int("bytes", len(data)).Msg("Uploading document to S3")

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document to S3: %w", err)
	}

	uri := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	log.Info().Str("uri", uri).Msg("Document uploaded to S3")
	return uri, nil
}
