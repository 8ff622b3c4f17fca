package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"family-archive/archive-api/internal/config"
	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/infrastructure/metrics"
)

var errStorageDisabled = errors.New("archive storage backend is not configured; set ARCHIVE_S3_BUCKET to enable exports")

// S3Storage reads originals from and writes bundles to S3-compatible storage
// such as Cloudflare R2.
type S3Storage struct {
	bucket     string
	presignTTL time.Duration
	client     *s3.Client
	presigner  *s3.PresignClient
	log        zerolog.Logger
	disabled   bool
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket:     strings.TrimSpace(cfg.S3Bucket),
		presignTTL: cfg.S3PresignTTL,
		log:        logger,
	}
	if storage.bucket == "" {
		logger.Warn().Msg("ARCHIVE_S3_BUCKET is not set; storage calls will fail until configured")
		storage.disabled = true
		return storage, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, ""),
		))
	} else {
		logger.Info().Msg("no static S3 credentials configured; using the default credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.S3Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	storage.client = client
	storage.presigner = s3.NewPresignClient(client)

	logger.Info().
		Str("bucket", storage.bucket).
		Str("endpoint", endpoint).
		Bool("path_style", cfg.S3UsePathStyle).
		Msg("s3 storage initialized")
	return storage, nil
}

func (s *S3Storage) ensureEnabled() error {
	if s.disabled {
		return errStorageDisabled
	}
	return nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	started := time.Now()
	defer func() { metrics.RecordStorageOperation("put", err, started) }()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}
	_, err = s.client.PutObject(ctx, input)
	return err
}

func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, "", err
	}
	started := time.Now()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	metrics.RecordStorageOperation("get", err, started)
	if err != nil {
		return nil, "", err
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

// PresignGet returns a time-limited GET URL for key in the configured bucket.
func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.presign(ctx, s.bucket, key, ttl)
}

// Authorize issues a presigned GET for one object. The authorization is
// scoped to that object and expires after ARCHIVE_S3_PRESIGN_TTL.
func (s *S3Storage) Authorize(ctx context.Context, ref archive.ObjectRef) (*archive.Authorization, error) {
	bucket := ref.Bucket
	if bucket == "" {
		bucket = s.bucket
	}
	issued := time.Now()
	url, err := s.presign(ctx, bucket, ref.Key, s.presignTTL)
	if err != nil {
		return nil, err
	}
	return &archive.Authorization{URL: url, ExpiresAt: issued.Add(s.presignTTL)}, nil
}

func (s *S3Storage) presign(ctx context.Context, bucket, key string, ttl time.Duration) (url string, err error) {
	if err := s.ensureEnabled(); err != nil {
		return "", err
	}
	started := time.Now()
	defer func() { metrics.RecordStorageOperation("presign", err, started) }()

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// Health performs a HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	if s.disabled {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
