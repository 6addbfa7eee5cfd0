package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/chama-dev/chama/backend/internal/config"
)

var _ DocumentStore = (*S3Store)(nil)

// ObjectPutter is the part of *s3.Client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Store connects to any S3-compatible endpoint with static credentials.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	c := cfg.Documents.S3
	if c.KeyID == "" || c.Secret == "" {
		return nil, fmt.Errorf("S3 config is incomplete")
	}

	opts := s3.Options{
		Region:       c.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(c.KeyID, c.Secret, ""),
		UsePathStyle: c.PathStyle,
	}
	if c.Endpoint != "" {
		opts.BaseEndpoint = aws.String(c.Endpoint)
	}

	return NewS3StoreWithClient(s3.New(opts), c.Bucket), nil
}

func NewS3StoreWithClient(client ObjectPutter, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: "registrations/",
	}
}

func (s *S3Store) StoreDocument(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	id := documentID(filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + id),
		Body:   r,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", id, err)
	}

	return id, nil
}
