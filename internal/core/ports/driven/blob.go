package driven

import (
	"context"
	"io"
	"time"
)

// BlobStore stores original uploaded files by key.
type BlobStore interface {
	// Put uploads body under key and returns the store's ETag.
	Put(ctx context.Context, key string, body io.Reader, contentType string, metadata map[string]string) (*PutResult, error)

	// Get returns the object bytes.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PutResult is returned by BlobStore.Put.
type PutResult struct {
	Key  string
	ETag string
}
