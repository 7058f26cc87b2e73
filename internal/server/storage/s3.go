package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// S3Config holds the settings of the S3-compatible backend (MinIO in the
// default deployment).
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3BlobStore implements BlobStore on an S3-compatible backend.
type S3BlobStore struct {
	config S3Config
	now    func() time.Time
}

// NewS3BlobStore constructs a blob store for the given backend settings.
func NewS3BlobStore(config S3Config) *S3BlobStore {
	return &S3BlobStore{config: config, now: time.Now}
}

// storageKey builds a date-partitioned key that keeps the original extension.
func (s *S3BlobStore) storageKey(fileName string) string {
	d := s.now()
	return fmt.Sprintf("media/%d/%02d/%02d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), filepath.Ext(fileName))
}

func (s *S3BlobStore) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.RootUser,     // MINIO_ROOT_USER
			s.config.RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Put writes the blob and returns the generated storage key.
func (s *S3BlobStore) Put(ctx context.Context, fileName, contentType string, size int64, body io.Reader) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client init error: %w", err)
	}

	key := s.storageKey(fileName)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put error: %w", err)
	}

	return key, nil
}
