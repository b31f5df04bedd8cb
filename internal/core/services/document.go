package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/metrics"
)

var _ driving.DocumentService = (*DocumentService)(nil)

// Upload and URL limits.
const (
	MaxUploadSize      = 20 << 20
	PreviewURLLifetime = 5 * time.Minute
	DownloadURLTTL     = time.Hour
)

var previewableTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"text/markdown":   true,
	"text/csv":        true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
}

// extensionTypes covers extensions the platform MIME table often lacks.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".csv":      "text/csv",
	".txt":      "text/plain",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DocumentService manages uploaded files and their records.
type DocumentService struct {
	docs       driven.DocumentStore
	blobs      driven.BlobStore
	vectors    driven.VectorIndex
	extractors driven.ExtractorRegistry
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewDocumentService(
	docs driven.DocumentStore,
	blobs driven.BlobStore,
	vectors driven.VectorIndex,
	extractors driven.ExtractorRegistry,
	m *metrics.Metrics,
) *DocumentService {
	return &DocumentService{
		docs:       docs,
		blobs:      blobs,
		vectors:    vectors,
		extractors: extractors,
		metrics:    m,
		now:        time.Now,
	}
}

// Upload stores the file and records it as pending.
func (s *DocumentService) Upload(ctx context.Context, req driving.UploadRequest) (*domain.Document, error) {
	name := filepath.Base(strings.TrimSpace(req.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if req.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	if req.Body == nil {
		return nil, fmt.Errorf("%w: file body is required", domain.ErrInvalidInput)
	}
	if req.Size > MaxUploadSize {
		return nil, tooLarge(req.Size)
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, tooLarge(int64(len(data)))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}

	contentType := DetectContentType(name, req.ContentType, data)
	now := s.now().UTC()
	key := fmt.Sprintf("documents/%s/%d-%s", req.OwnerID, now.UnixMilli(), name)

	put, err := s.blobs.Put(ctx, key, bytes.NewReader(data), contentType, map[string]string{
		"uploadedBy":   req.OwnerID,
		"originalName": name,
		"uploadedAt":   now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	logger.Debug("Stored %s (%s) etag=%s", key, domain.FormatFileSize(int64(len(data))), put.ETag)

	doc := &domain.Document{
		ID:          uuid.NewString(),
		Name:        name,
		StorageKey:  put.Key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Status:      domain.StatusPending,
		OwnerID:     req.OwnerID,
		Source:      domain.SourceManualUpload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		// Do not leave an orphaned object behind.
		if delErr := s.blobs.Delete(ctx, put.Key); delErr != nil {
			logger.Warn("Failed to remove orphaned upload %s: %v", put.Key, delErr)
		}
		return nil, fmt.Errorf("record document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	return s.docs.ListDocuments(ctx, ownerID)
}

func (s *DocumentService) ListAll(ctx context.Context) ([]domain.DocumentSummary, error) {
	return s.docs.ListDocuments(ctx, "")
}

// ExtractText reads the stored file and saves its text as the document's raw text.
// The document is processing while this runs and returns to pending on success,
// ready for indexing.
func (s *DocumentService) ExtractText(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.HasRawText() {
		return nil, fmt.Errorf("%s: %w", documentID, domain.ErrAlreadyExtracted)
	}
	extractor := s.extractors.Get(doc.ContentType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, doc.ContentType)
	}

	claimed, err := s.docs.CompareAndSetStatus(ctx, documentID,
		[]domain.DocumentStatus{domain.StatusPending, domain.StatusError}, domain.StatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("claim document %s: %w", documentID, err)
	}
	if !claimed {
		return nil, fmt.Errorf("%s: %w", documentID, domain.ErrIngestionInProgress)
	}

	text, err := s.extract(ctx, doc, extractor)
	s.metrics.RecordExtraction(err)
	if err != nil {
		logger.Error(err, "Extraction of %s failed", documentID)
		s.markError(documentID)
		return nil, err
	}

	if err := s.docs.SetRawText(ctx, documentID, text); err != nil {
		s.markError(documentID)
		return nil, fmt.Errorf("save raw text: %w", err)
	}
	if err := s.docs.SetStatus(ctx, documentID, domain.StatusPending); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}

	logger.Info("Extracted %d characters from %s", len([]rune(text)), doc.Name)
	return s.Get(ctx, documentID)
}

func (s *DocumentService) extract(ctx context.Context, doc *domain.Document, e driven.TextExtractor) (string, error) {
	data, err := s.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		return "", fmt.Errorf("fetch file: %w", err)
	}
	text, err := e.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text content found in %s", domain.ErrEmptyInput, doc.Name)
	}
	return text, nil
}

func (s *DocumentService) PreviewURL(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	if !IsPreviewable(doc.ContentType) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedPreview, doc.ContentType)
	}
	return s.blobs.PresignGet(ctx, doc.StorageKey, PreviewURLLifetime)
}

func (s *DocumentService) DownloadURL(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignGet(ctx, doc.StorageKey, DownloadURLTTL)
}

// Reset drops the document's vectors and returns it to pending.
func (s *DocumentService) Reset(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ResetStatus(doc.Status); err != nil {
		return nil, err
	}
	if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return nil, fmt.Errorf("drop vectors: %w", err)
	}
	if err := s.docs.ResetStatus(ctx, documentID); err != nil {
		return nil, fmt.Errorf("reset status: %w", err)
	}
	return s.Get(ctx, documentID)
}

// Delete removes the stored file first; if that fails nothing else is touched.
// Vector cleanup failures are logged, not returned.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	// A failed run may have written some batches, so points go whatever the status.
	if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
		logger.Warn("Failed to delete vectors for %s: %v", documentID, err)
	}

	if err := s.docs.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.metrics.RecordDocumentDeleted()
	return nil
}

func (s *DocumentService) markError(documentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.docs.SetStatus(ctx, documentID, domain.StatusError); err != nil {
		logger.Warn("Failed to mark %s as error: %v", documentID, err)
	}
}

// IsPreviewable reports whether browsers can display contentType inline.
func IsPreviewable(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = contentType
	}
	return previewableTypes[strings.ToLower(mt)]
}

// DetectContentType prefers the declared type, then the file extension,
// then content sniffing.
func DetectContentType(filename, declared string, data []byte) string {
	if declared = strings.TrimSpace(declared); declared != "" && declared != "application/octet-stream" {
		return declared
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func tooLarge(size int64) error {
	return fmt.Errorf("%w: %s exceeds the %s limit",
		domain.ErrFileTooLarge, domain.FormatFileSize(size), domain.FormatFileSize(MaxUploadSize))
}
