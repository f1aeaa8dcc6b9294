package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by the store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store implements Store on top of Amazon S3. Keys are stored verbatim so
// the key a caller persists or enqueues is the physical object key.
type S3Store struct {
	client S3API
	bucket string
}

// NewS3Store creates an S3-backed blob store.
func NewS3Store(client S3API, bucket string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &S3Store{
		client: client,
		bucket: bucket,
	}, nil
}

// Put uploads the object under the configured prefix.
func (s *S3Store) Put(ctx context.Context, in PutInput) error {
	if in.Key == "" {
		return fmt.Errorf("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(strings.TrimLeft(in.Key, "/")),
		Body:          in.Body,
		ContentLength: aws.Int64(in.Size),
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}
	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, in.Key, err)
	}
	return nil
}

// Get downloads a stored object for reading.
func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimLeft(key, "/")),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

var _ Store = (*S3Store)(nil)
