package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestDiagnosticsService_Database(t *testing.T) {
	h := newHarness(t, 100, 0)
	h.seedDocument(t, "doc-1", "a.txt", "text")
	svc := NewDiagnosticsService(memory.NewInspector(h.docs, h.chats), h.index, h.embedding, h.llm)

	info, err := svc.Database(context.Background())

	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Equal(t, 1, info.Documents)
	assert.Equal(t, "0 Bytes", info.Size)
}

func TestDiagnosticsService_Collection(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 100, 0)
	svc := NewDiagnosticsService(memory.NewInspector(h.docs, h.chats), h.index, h.embedding, h.llm)

	_, err := svc.Collection(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.EnsureCollection(ctx))
	info, err := svc.Collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test", info.Name)
	assert.Zero(t, info.PointsCount)

	h.index.down = true
	_, err = svc.Collection(ctx)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestDiagnosticsService_Services(t *testing.T) {
	h := newHarness(t, 100, 0)
	h.llm.pingErr = domain.ErrLLMUnavailable
	svc := NewDiagnosticsService(memory.NewInspector(h.docs, h.chats), h.index, h.embedding, h.llm)

	statuses := svc.Services(context.Background())

	require.Len(t, statuses, 3)
	assert.Equal(t, domain.ServiceStatus{
		Name: "embedding", Available: true, Detail: domain.ModelTextEmbedding3Small,
	}, statuses[0])
	assert.Equal(t, "llm", statuses[1].Name)
	assert.False(t, statuses[1].Available)
	assert.Contains(t, statuses[1].Detail, "unavailable")
	assert.Equal(t, domain.ServiceStatus{Name: "vector_index", Available: true}, statuses[2])
}

func TestDiagnosticsService_ServicesNotConfigured(t *testing.T) {
	h := newHarness(t, 100, 0)
	svc := NewDiagnosticsService(memory.NewInspector(h.docs, h.chats), h.index, nil, nil)

	statuses := svc.Services(context.Background())

	assert.Equal(t, domain.ServiceStatus{Name: "embedding", Detail: "not configured"}, statuses[0])
	assert.Equal(t, domain.ServiceStatus{Name: "llm", Detail: "not configured"}, statuses[1])
	assert.True(t, statuses[2].Available)
}
