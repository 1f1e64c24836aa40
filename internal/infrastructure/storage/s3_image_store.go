package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"emergencyreport/internal/domain/service"
)

// S3API is the subset of the S3 client the image store calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore keeps pictures in an S3 bucket under a key prefix.
type S3ImageStore struct {
	client  S3API
	bucket  string
	prefix  string
	region  string
	timeout time.Duration
}

var _ service.ImageStore = (*S3ImageStore)(nil)

// NewS3Client loads the default AWS credential chain for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func NewS3ImageStore(client S3API, bucket, prefix, region string) *S3ImageStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3ImageStore{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		region:  region,
		timeout: 10 * time.Second,
	}
}

func (s *S3ImageStore) urlPrefix() string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
}

func (s *S3ImageStore) Store(ctx context.Context, name, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := s.prefix + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=86400"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put image to S3: %w", err)
	}

	return s.urlPrefix() + key, nil
}

func (s *S3ImageStore) Remove(ctx context.Context, ref string) error {
	if !strings.HasPrefix(ref, s.urlPrefix()) {
		return fmt.Errorf("image reference %q is not in bucket %s", ref, s.bucket)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(ref, s.urlPrefix())),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3: %w", err)
	}
	return nil
}
