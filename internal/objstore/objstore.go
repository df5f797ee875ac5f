// Package objstore wraps the S3-compatible object store behind a small
// interface: ensure a bucket exists, put an object, get an object.
package objstore

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound indicates the requested object does not exist in the
// bucket.
var ErrObjectNotFound = errors.New("object not found")

// Store is the object-store surface the handlers depend on.
type Store interface {
	// EnsureBucket creates the bucket if it does not exist. Idempotent.
	EnsureBucket(ctx context.Context, bucket string) error

	// Put uploads an object. size must be the exact payload length.
	Put(ctx context.Context, bucket, object string, r io.Reader, size int64, contentType string) error

	// Get opens an object for reading. Returns ErrObjectNotFound if the
	// object does not exist. The caller closes the reader.
	Get(ctx context.Context, bucket, object string) (io.ReadCloser, int64, error)
}
