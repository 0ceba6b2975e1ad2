package discount

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Source implements Source for code files stored in AWS S3.
type s3Source struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Source creates a new S3-backed source for code imports.
func NewS3Source(ctx context.Context, bucket, region string, logger zerolog.Logger) (Source, error) {
	logger = logger.With().Str("component", "s3-source").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 source initialised")

	return &s3Source{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Open fetches the object at the given key. The key should include any
// configured prefix.
func (s *s3Source) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("fetching code file from S3")

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	return result.Body, nil
}
