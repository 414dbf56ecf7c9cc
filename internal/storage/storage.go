// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading, retrieving, and deleting objects.
type Storage interface {
	// Upload streams data to the store under the given key and returns
	// the browser-accessible location of the stored object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	// Download opens a readable stream for the object identified by key.
	// The caller owns the returned stream and must close it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
}
