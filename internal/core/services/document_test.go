package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/metrics"
)

func upload(t *testing.T, h *harness, name, contentType, body string) *domain.Document {
	t.Helper()
	doc, err := h.documents.Upload(context.Background(), driving.UploadRequest{
		OwnerID:     "alice",
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	})
	require.NoError(t, err)
	return doc
}

func TestDocumentService_Upload(t *testing.T) {
	h := newHarness(t, 100, 0)

	doc := upload(t, h, "notes.md", "", "# Notes\n\nSome text.")

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "notes.md", doc.Name)
	assert.Equal(t, "text/markdown", doc.ContentType)
	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.Equal(t, domain.SourceManualUpload, doc.Source)
	assert.False(t, doc.HasRawText())
	assert.True(t, strings.HasPrefix(doc.StorageKey, "documents/alice/"))
	assert.True(t, strings.HasSuffix(doc.StorageKey, "-notes.md"))

	meta := h.blobs.metadata[doc.StorageKey]
	assert.Equal(t, "alice", meta["uploadedBy"])
	assert.Equal(t, "notes.md", meta["originalName"])
	assert.NotEmpty(t, meta["uploadedAt"])

	stored, err := h.documents.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.StorageKey, stored.StorageKey)
}

func TestDocumentService_Upload_StripsPath(t *testing.T) {
	h := newHarness(t, 100, 0)

	doc := upload(t, h, "../../etc/report.txt", "text/plain", "x")

	assert.Equal(t, "report.txt", doc.Name)
	assert.NotContains(t, doc.StorageKey, "..")
}

func TestDocumentService_Upload_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		req     driving.UploadRequest
		wantErr error
	}{
		{
			name:    "missing filename",
			req:     driving.UploadRequest{OwnerID: "alice", Body: strings.NewReader("x")},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing owner",
			req:     driving.UploadRequest{Filename: "a.txt", Body: strings.NewReader("x")},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "empty body",
			req:     driving.UploadRequest{OwnerID: "alice", Filename: "a.txt", Body: strings.NewReader("")},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "declared too large",
			req: driving.UploadRequest{
				OwnerID: "alice", Filename: "a.txt", Size: MaxUploadSize + 1, Body: strings.NewReader("x"),
			},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name: "actually too large",
			req: driving.UploadRequest{
				OwnerID: "alice", Filename: "a.txt", Body: bytes.NewReader(make([]byte, MaxUploadSize+1)),
			},
			wantErr: domain.ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 100, 0)

			_, err := h.documents.Upload(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, h.blobs.count())
			assert.Zero(t, h.docs.Len())
		})
	}
}

func TestDocumentService_Upload_BlobFailure(t *testing.T) {
	h := newHarness(t, 100, 0)
	h.blobs.putErr = errUpstream

	_, err := h.documents.Upload(context.Background(), driving.UploadRequest{
		OwnerID: "alice", Filename: "a.txt", Body: strings.NewReader("x"),
	})

	assert.ErrorIs(t, err, errUpstream)
	assert.Zero(t, h.docs.Len())
}

func TestDocumentService_List(t *testing.T) {
	h := newHarness(t, 100, 0)
	upload(t, h, "a.txt", "text/plain", "a")
	_, err := h.documents.Upload(context.Background(), driving.UploadRequest{
		OwnerID: "bob", Filename: "b.txt", Body: strings.NewReader("b"),
	})
	require.NoError(t, err)

	mine, err := h.documents.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a.txt", mine[0].Name)

	all, err := h.documents.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = h.documents.List(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_ExtractText(t *testing.T) {
	h := newHarness(t, 100, 0)
	doc := upload(t, h, "notes.md", "text/markdown", "# Title\n\nSome **bold** text.")

	got, err := h.documents.ExtractText(context.Background(), doc.ID)

	require.NoError(t, err)
	assert.True(t, got.HasRawText())
	assert.Contains(t, got.RawText, "Some bold text.")
	assert.NotContains(t, got.RawText, "**")
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.ExtractionRunsTotal.WithLabelValues(metrics.OutcomeSuccess)))

	_, err = h.documents.ExtractText(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExtracted)
}

func TestDocumentService_ExtractThenIndex(t *testing.T) {
	h := newHarness(t, 50, 0)
	doc := upload(t, h, "notes.txt", "text/plain", "first paragraph here\n\nsecond paragraph here")

	_, err := h.documents.ExtractText(context.Background(), doc.ID)
	require.NoError(t, err)
	report, err := h.ingest.Index(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Positive(t, report.PointsIndexed)
	assert.Equal(t, domain.StatusIndexed, h.status(t, doc.ID))
}

func TestDocumentService_ExtractText_Failures(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		setup       func(h *harness)
		wantErr     error
		wantStatus  domain.DocumentStatus
	}{
		{
			name:        "unsupported type",
			contentType: "image/png",
			body:        "png",
			wantErr:     domain.ErrUnsupportedType,
			wantStatus:  domain.StatusPending,
		},
		{
			name:        "blank text",
			contentType: "text/plain",
			body:        "   \n\n  ",
			wantErr:     domain.ErrEmptyInput,
			wantStatus:  domain.StatusError,
		},
		{
			name:        "extractor fails",
			contentType: "application/x-broken",
			body:        "data",
			wantErr:     errUpstream,
			wantStatus:  domain.StatusError,
		},
		{
			name:        "blob fetch fails",
			contentType: "text/plain",
			body:        "text",
			setup:       func(h *harness) { h.blobs.getErr = errUpstream },
			wantErr:     errUpstream,
			wantStatus:  domain.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 100, 0)
			doc := upload(t, h, "file.bin", tt.contentType, tt.body)
			if tt.setup != nil {
				tt.setup(h)
			}

			_, err := h.documents.ExtractText(context.Background(), doc.ID)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantStatus, h.status(t, doc.ID))
		})
	}
}

func TestDocumentService_ExtractText_InProgress(t *testing.T) {
	h := newHarness(t, 100, 0)
	doc := upload(t, h, "a.txt", "text/plain", "text")
	require.NoError(t, h.docs.SetStatus(context.Background(), doc.ID, domain.StatusProcessing))

	_, err := h.documents.ExtractText(context.Background(), doc.ID)

	assert.ErrorIs(t, err, domain.ErrIngestionInProgress)
	assert.Equal(t, domain.StatusProcessing, h.status(t, doc.ID))
}

func TestDocumentService_PreviewAndDownload(t *testing.T) {
	h := newHarness(t, 100, 0)
	pdf := upload(t, h, "a.pdf", "application/pdf", "%PDF-1.4")
	zip := upload(t, h, "a.zip", "application/zip", "PK")

	url, err := h.documents.PreviewURL(context.Background(), pdf.ID)
	require.NoError(t, err)
	assert.Contains(t, url, pdf.StorageKey)
	assert.Contains(t, url, "ttl=5m0s")

	_, err = h.documents.PreviewURL(context.Background(), zip.ID)
	assert.ErrorIs(t, err, domain.ErrUnsupportedPreview)

	url, err = h.documents.DownloadURL(context.Background(), zip.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "ttl=1h0m0s")

	_, err = h.documents.DownloadURL(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Reset(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 100, 0)
	h.seedDocument(t, "doc-1", "a.txt", "indexed text")
	_, err := h.ingest.Index(ctx, "doc-1")
	require.NoError(t, err)

	doc, err := h.documents.Reset(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.Equal(t, int64(0), h.index.points(t))

	_, err = h.documents.Reset(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 100, 0)
	doc := upload(t, h, "a.txt", "text/plain", "delete me please")
	_, err := h.documents.ExtractText(ctx, doc.ID)
	require.NoError(t, err)
	_, err = h.ingest.Index(ctx, doc.ID)
	require.NoError(t, err)
	require.Positive(t, h.index.points(t))

	require.NoError(t, h.documents.Delete(ctx, doc.ID))

	assert.Zero(t, h.blobs.count())
	assert.Equal(t, int64(0), h.index.points(t))
	_, err = h.documents.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.DocumentsDeleted))
}

func TestDocumentService_Delete_FailedRunLeavesNoPoints(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 100, 0)
	doc := upload(t, h, "a.txt", "text/plain", "partly indexed text")
	_, err := h.documents.ExtractText(ctx, doc.ID)
	require.NoError(t, err)

	// An earlier run wrote a batch, then failed.
	_, err = h.index.Index.UpsertChunks(ctx, doc.ID, "a.txt",
		[]domain.TextChunk{{Content: "partly", Index: 0, StartIndex: 0, EndIndex: 6}},
		[][]float32{letterVector("partly")})
	require.NoError(t, err)
	h.embedding.err = errUpstream
	_, err = h.ingest.Index(ctx, doc.ID)
	require.Error(t, err)
	require.Equal(t, domain.StatusError, h.status(t, doc.ID))

	require.NoError(t, h.documents.Delete(ctx, doc.ID))

	assert.Equal(t, int64(0), h.index.points(t))
}

func TestDocumentService_Delete_PendingDocument(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 100, 0)
	doc := upload(t, h, "a.txt", "text/plain", "never indexed")

	require.NoError(t, h.documents.Delete(ctx, doc.ID))

	assert.Equal(t, int32(1), h.index.deletes.Load())
	assert.Zero(t, h.blobs.count())
	_, err := h.documents.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Delete_BlobFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 100, 0)
	doc := upload(t, h, "a.txt", "text/plain", "x")
	h.blobs.deleteErr = errUpstream

	err := h.documents.Delete(ctx, doc.ID)

	assert.ErrorIs(t, err, errUpstream)
	_, err = h.documents.Get(ctx, doc.ID)
	assert.NoError(t, err)
}

func TestDocumentService_Delete_VectorFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 100, 0)
	h.seedDocument(t, "doc-1", "a.txt", "text")
	_, err := h.ingest.Index(ctx, "doc-1")
	require.NoError(t, err)
	h.index.deleteErr = errUpstream

	require.NoError(t, h.documents.Delete(ctx, "doc-1"))

	_, err = h.documents.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		declared string
		data     []byte
		want     string
	}{
		{"declared wins", "a.txt", "application/pdf", nil, "application/pdf"},
		{"octet stream ignored", "a.md", "application/octet-stream", nil, "text/markdown"},
		{"extension table", "a.CSV", "", nil, "text/csv"},
		{"sniffed", "noext", "", []byte("%PDF-1.7 rest"), "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.filename, tt.declared, tt.data))
		})
	}
}

func TestIsPreviewable(t *testing.T) {
	assert.True(t, IsPreviewable("application/pdf"))
	assert.True(t, IsPreviewable("text/plain; charset=utf-8"))
	assert.True(t, IsPreviewable("IMAGE/PNG"))
	assert.False(t, IsPreviewable("application/zip"))
}
