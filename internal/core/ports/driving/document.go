package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DocumentService manages uploaded documents.
type DocumentService interface {
	// Upload stores the file in blob storage and records a pending document.
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns the owner's documents.
	List(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error)

	// ListAll returns every document.
	ListAll(ctx context.Context) ([]domain.DocumentSummary, error)

	// ExtractText fills the document's raw text from the stored file.
	ExtractText(ctx context.Context, documentID string) (*domain.Document, error)

	// PreviewURL returns a short-lived URL for previewable content types.
	PreviewURL(ctx context.Context, documentID string) (string, error)

	// DownloadURL returns a presigned download URL.
	DownloadURL(ctx context.Context, documentID string) (string, error)

	// Reset returns an indexed or failed document to pending and drops its vectors.
	Reset(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes the stored file, vectors and record.
	Delete(ctx context.Context, documentID string) error
}

// UploadRequest describes a file to upload.
type UploadRequest struct {
	OwnerID     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
