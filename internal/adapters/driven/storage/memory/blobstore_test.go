package memory

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestBlobStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()

	res, err := s.Put(ctx, "docs/a.txt", strings.NewReader("hello"), "text/plain", map[string]string{"owner": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", res.Key)
	assert.Equal(t, `"5d41402abc4b2a76b9719d911017c592"`, res.ETag)

	data, err := s.Get(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	data[0] = 'J'
	again, err := s.Get(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), again)
}

func TestBlobStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()

	_, err := s.Put(ctx, "", bytes.NewReader(nil), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Put(ctx, "k", failingReader{}, "", nil)
	assert.ErrorIs(t, err, domain.ErrBlobStore)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.PresignGet(ctx, "missing", time.Minute)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_DeleteAndPresign(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	_, err := s.Put(ctx, "a b.pdf", strings.NewReader("%PDF"), "application/pdf", nil)
	require.NoError(t, err)

	u, err := s.PresignGet(ctx, "a b.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "memory://a%20b.pdf?expires=2026-01-02T04%3A04%3A05Z", u)

	require.NoError(t, s.Delete(ctx, "a b.pdf"))
	require.NoError(t, s.Delete(ctx, "a b.pdf"))
	assert.Zero(t, s.Len())
	assert.NoError(t, s.Ping(ctx))
}
