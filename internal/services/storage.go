package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	appconfig "ngo-site-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxImageSize = 10 << 20 // 10 MiB

var (
	// ErrFileTooLarge is returned when an upload exceeds the size cap
	ErrFileTooLarge = errors.New("file size exceeds 10MB limit")
	// ErrUnsupportedImageType is returned for anything but JPEG/PNG
	ErrUnsupportedImageType = errors.New("only JPEG and PNG images are allowed")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ObjectStorage stores uploaded images and returns durable public URLs
type ObjectStorage interface {
	Put(ctx context.Context, folder, contentType string, body io.Reader, size int64) (url, key string, err error)
	Delete(ctx context.Context, key string) error
}

// S3Storage implements ObjectStorage on an S3-compatible bucket
type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Storage creates an S3-backed object storage
func NewS3Storage(cfg appconfig.StorageConfig) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// Put validates and uploads an image, returning its public URL and object key
func (s *S3Storage) Put(ctx context.Context, folder, contentType string, body io.Reader, size int64) (string, string, error) {
	key, err := objectKey(folder, contentType, size)
	if err != nil {
		return "", "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(strings.ToLower(strings.TrimSpace(contentType))),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.objectURL(key), key, nil
}

// Delete removes an object, used to compensate failed submissions
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// cleanupObject best-effort deletes a stored object after a failed insert so
// the bucket does not accumulate orphans
func cleanupObject(ctx context.Context, storage ObjectStorage, key string) {
	if err := storage.Delete(ctx, key); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Failed to clean up stored object after insert failure")
	}
}

// objectKey validates the upload and builds a unique key: {folder}/{uuid}{ext}
func objectKey(folder, contentType string, size int64) (string, error) {
	if size > maxImageSize {
		return "", ErrFileTooLarge
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedImageType
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext), nil
}

// objectURL builds the public URL for a stored object
func (s *S3Storage) objectURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
