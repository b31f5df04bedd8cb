package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func newDoc(id, owner string, created time.Time) *domain.Document {
	return &domain.Document{
		ID:        id,
		Name:      id + ".pdf",
		OwnerID:   owner,
		Status:    domain.StatusPending,
		Source:    domain.SourceManualUpload,
		CreatedAt: created,
	}
}

func TestDocumentStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	require.NoError(t, s.CreateDocument(ctx, newDoc("d1", "alice", time.Time{})))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1.pdf", got.Name)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	assert.ErrorIs(t, s.CreateDocument(ctx, newDoc("d1", "alice", time.Time{})), domain.ErrAlreadyExists)
	assert.ErrorIs(t, s.CreateDocument(ctx, &domain.Document{}), domain.ErrInvalidInput)

	_, err = s.GetDocument(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	require.NoError(t, s.CreateDocument(ctx, newDoc("d1", "alice", time.Time{})))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	got.Status = domain.StatusIndexed

	again, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
}

func TestDocumentStore_ListOrderAndOwner(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateDocument(ctx, newDoc("old", "alice", base)))
	require.NoError(t, s.CreateDocument(ctx, newDoc("new", "alice", base.Add(time.Hour))))
	require.NoError(t, s.CreateDocument(ctx, newDoc("bob", "bob", base.Add(2*time.Hour))))
	require.NoError(t, s.SetRawText(ctx, "old", "text"))

	alice, err := s.ListDocuments(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, "new", alice[0].ID)
	assert.Equal(t, "old", alice[1].ID)
	assert.True(t, alice[1].HasRawText)
	assert.False(t, alice[0].HasRawText)

	all, err := s.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "bob", all[0].ID)
}

func TestDocumentStore_UpdatesMissing(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	assert.ErrorIs(t, s.SetRawText(ctx, "x", "t"), domain.ErrNotFound)
	assert.ErrorIs(t, s.SetStatus(ctx, "x", domain.StatusIndexed), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDocument(ctx, "x"), domain.ErrNotFound)
	_, err := s.CompareAndSetStatus(ctx, "x", []domain.DocumentStatus{domain.StatusPending}, domain.StatusProcessing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SetStatus_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	require.NoError(t, s.CreateDocument(ctx, newDoc("d1", "alice", time.Time{})))

	assert.ErrorIs(t, s.SetStatus(ctx, "d1", domain.StatusIndexed), domain.ErrInvalidTransition)

	require.NoError(t, s.SetStatus(ctx, "d1", domain.StatusProcessing))
	require.NoError(t, s.SetStatus(ctx, "d1", domain.StatusIndexed))

	err := s.SetStatus(ctx, "d1", domain.StatusProcessing)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	got, getErr := s.GetDocument(ctx, "d1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusIndexed, got.Status)

	require.NoError(t, s.ResetStatus(ctx, "d1"))
	got, getErr = s.GetDocument(ctx, "d1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusPending, got.Status)

	assert.ErrorIs(t, s.ResetStatus(ctx, "d1"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, s.ResetStatus(ctx, "missing"), domain.ErrNotFound)
}

func TestDocumentStore_CompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	require.NoError(t, s.CreateDocument(ctx, newDoc("d1", "alice", time.Time{})))
	from := []domain.DocumentStatus{domain.StatusPending, domain.StatusError}

	ok, err := s.CompareAndSetStatus(ctx, "d1", from, domain.StatusProcessing)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndSetStatus(ctx, "d1", from, domain.StatusProcessing)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentStore_CompareAndSetStatus_SingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	require.NoError(t, s.CreateDocument(ctx, newDoc("d1", "alice", time.Time{})))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.CompareAndSetStatus(ctx, "d1",
				[]domain.DocumentStatus{domain.StatusPending}, domain.StatusProcessing)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestDocumentStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	require.NoError(t, s.CreateDocument(ctx, newDoc("d1", "alice", time.Time{})))

	require.NoError(t, s.DeleteDocument(ctx, "d1"))

	assert.Equal(t, 0, s.Len())
}
