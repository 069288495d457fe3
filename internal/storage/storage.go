package storage

import (
	"context"
	"io"
)

// Storage abstracts where feedback screenshots are written. The local
// filesystem and S3 implementations are interchangeable.
type Storage interface {
	// Save writes data under key and returns a location that Open accepts
	// (an absolute path for local storage, s3://bucket/key for S3).
	Save(ctx context.Context, key string, data io.Reader, contentType string) (location string, err error)

	// Open returns a reader for a location previously returned by Save.
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Delete removes the object at location. Missing objects are not an error.
	Delete(ctx context.Context, location string) error
}
