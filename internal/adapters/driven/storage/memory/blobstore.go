package memory

import (
	"context"
	"crypto/md5" //nolint:gosec // ETag format, not security
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.BlobStore = (*BlobStore)(nil)

type object struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// BlobStore keeps uploaded files in memory. Presigned URLs use the
// memory:// scheme and cannot be fetched; they exist so callers can be
// exercised without an object store.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

func NewBlobStore() *BlobStore {
	return &BlobStore{
		objects: make(map[string]object),
		now:     time.Now,
	}
}

// Put reads body fully and stores a copy under key.
func (s *BlobStore) Put(_ context.Context, key string, body io.Reader, contentType string,
	metadata map[string]string) (*driven.PutResult, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty object key", domain.ErrInvalidInput)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrBlobStore, key, err)
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	s.mu.Lock()
	s.objects[key] = object{data: data, contentType: contentType, metadata: meta}
	s.mu.Unlock()

	sum := md5.Sum(data) //nolint:gosec
	return &driven.PutResult{Key: key, ETag: `"` + hex.EncodeToString(sum[:]) + `"`}, nil
}

func (s *BlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

// Delete removes key. Missing keys succeed, matching S3.
func (s *BlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *BlobStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
	}
	expires := s.now().Add(ttl).UTC().Format(time.RFC3339)
	return "memory://" + url.PathEscape(key) + "?expires=" + url.QueryEscape(expires), nil
}

// Ping always succeeds.
func (s *BlobStore) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored objects.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
