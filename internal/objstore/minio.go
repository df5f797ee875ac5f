package objstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig carries the connection settings for the object store. The
// client is constructed once at startup and injected; there is no ambient
// global.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinioStore implements Store on a MinIO (or any S3-compatible) service.
type MinioStore struct {
	client *minio.Client
	logger *slog.Logger
}

// NewMinioStore connects to the object store. The connection is lazy; errors
// surface on the first operation.
func NewMinioStore(cfg MinioConfig, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioStore{client: client, logger: logger}, nil
}

// EnsureBucket creates the bucket if absent. Safe to call repeatedly.
func (s *MinioStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", bucket, err)
	}
	if exists {
		s.logger.DebugContext(ctx, "bucket already exists", slog.String("bucket", bucket))
		return nil
	}

	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}
	s.logger.InfoContext(ctx, "bucket created", slog.String("bucket", bucket))
	return nil
}

// Put uploads an object with the given content type.
func (s *MinioStore) Put(ctx context.Context, bucket, object string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, object, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q in %q: %w", object, bucket, err)
	}
	return nil
}

// Get opens an object for reading. Stat runs first so a missing object maps
// to ErrObjectNotFound instead of an error on first read.
func (s *MinioStore) Get(ctx context.Context, bucket, object string) (io.ReadCloser, int64, error) {
	stat, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("failed to stat object %q in %q: %w", object, bucket, err)
	}

	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object %q in %q: %w", object, bucket, err)
	}
	return obj, stat.Size, nil
}
