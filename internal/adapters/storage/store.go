// Package storage uploads lead media attachments to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore writes objects into a single bucket.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, reader io.Reader, size int64) error
	Bucket() string
}

// Config is the storage slice of the application configuration.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketLeadMedia() string
	IsMinIOEnabled() bool
}

// MinIOStore is an ObjectStore backed by a MinIO (or S3) bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects to the configured endpoint. It does not touch the
// bucket; call EnsureBucket before the first upload.
func NewMinIOStore(cfg Config) (*MinIOStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("object storage endpoint not configured")
	}
	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStore{client: client, bucket: cfg.GetMinioBucketLeadMedia()}, nil
}

// Bucket returns the bucket objects are written to.
func (s *MinIOStore) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket when it is missing.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// PutObject uploads reader under key.
func (s *MinIOStore) PutObject(ctx context.Context, key, contentType string, reader io.Reader, size int64) error {
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

var _ ObjectStore = (*MinIOStore)(nil)
