// Package storage writes received media blobs to S3-compatible object storage.
package storage

import (
	"context"
	"io"
)

// BlobStore persists raw media content under a generated key.
type BlobStore interface {
	// Put writes the blob and returns the storage key it was written under.
	Put(ctx context.Context, fileName, contentType string, size int64, body io.Reader) (string, error)
}
