package sqlstore

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

func newDoc(id, owner string) *domain.Document {
	return &domain.Document{
		ID:          id,
		Name:        id + ".txt",
		StorageKey:  "documents/" + owner + "/1-" + id + ".txt",
		ContentType: "text/plain",
		Size:        42,
		Status:      domain.StatusPending,
		OwnerID:     owner,
		Source:      domain.SourceManualUpload,
	}
}

func TestDocument_CreateGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	doc := newDoc("d1", "alice")
	require.NoError(t, store.CreateDocument(ctx, doc))
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1.txt", got.Name)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, int64(42), got.Size)
	assert.False(t, got.HasRawText())
	assert.Equal(t, doc.CreatedAt.Truncate(time.Millisecond), got.CreatedAt)

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocument_ListByOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		doc := newDoc(id, "alice")
		doc.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateDocument(ctx, doc))
	}
	require.NoError(t, store.CreateDocument(ctx, newDoc("z", "bob")))
	require.NoError(t, store.SetRawText(ctx, "b", "some text"))

	list, err := store.ListDocuments(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.True(t, list[1].HasRawText)
	assert.False(t, list[0].HasRawText)

	all, err := store.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDocument_StatusUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateDocument(ctx, newDoc("d1", "alice")))

	ok, err := store.CompareAndSetStatus(ctx, "d1",
		[]domain.DocumentStatus{domain.StatusPending, domain.StatusError}, domain.StatusProcessing)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CompareAndSetStatus(ctx, "d1",
		[]domain.DocumentStatus{domain.StatusPending, domain.StatusError}, domain.StatusProcessing)
	require.NoError(t, err)
	assert.False(t, ok, "second swap must lose")

	_, err = store.CompareAndSetStatus(ctx, "missing",
		[]domain.DocumentStatus{domain.StatusPending}, domain.StatusProcessing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SetStatus(ctx, "d1", domain.StatusIndexed))
	got, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)

	assert.ErrorIs(t, store.SetStatus(ctx, "missing", domain.StatusError), domain.ErrNotFound)
}

func TestDocument_SetStatus_RejectsInvalidEdges(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateDocument(ctx, newDoc("d1", "alice")))

	assert.ErrorIs(t, store.SetStatus(ctx, "d1", domain.StatusIndexed), domain.ErrInvalidTransition)
	require.NoError(t, store.SetStatus(ctx, "d1", domain.StatusProcessing))
	require.NoError(t, store.SetStatus(ctx, "d1", domain.StatusIndexed))

	assert.ErrorIs(t, store.SetStatus(ctx, "d1", domain.StatusProcessing), domain.ErrInvalidTransition)
	assert.ErrorIs(t, store.SetStatus(ctx, "d1", "archived"), domain.ErrInvalidTransition)
	got, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)

	require.NoError(t, store.ResetStatus(ctx, "d1"))
	got, err = store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.ErrorIs(t, store.ResetStatus(ctx, "d1"), domain.ErrInvalidTransition)
}

func TestDocument_CompareAndSetStatus_SingleWinner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateDocument(ctx, newDoc("d1", "alice")))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.CompareAndSetStatus(ctx, "d1",
				[]domain.DocumentStatus{domain.StatusPending}, domain.StatusProcessing)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestDocument_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateDocument(ctx, newDoc("d1", "alice")))

	require.NoError(t, store.DeleteDocument(ctx, "d1"))
	assert.ErrorIs(t, store.DeleteDocument(ctx, "d1"), domain.ErrNotFound)
}
