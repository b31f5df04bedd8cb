package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/metrics"
	"github.com/custodia-labs/docrag/internal/postprocessors/chunker"
)

var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs chunk, embed and index for one document at a time.
type IngestService struct {
	docs      driven.DocumentStore
	vectors   driven.VectorIndex
	embedder  *Embedder
	chunker   *chunker.Chunker
	batchSize int
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewIngestService wires the pipeline. batchSize <= 0 uses the embedder default.
func NewIngestService(
	docs driven.DocumentStore,
	vectors driven.VectorIndex,
	embedder *Embedder,
	ch *chunker.Chunker,
	batchSize int,
	m *metrics.Metrics,
) *IngestService {
	return &IngestService{
		docs:      docs,
		vectors:   vectors,
		embedder:  embedder,
		chunker:   ch,
		batchSize: batchSize,
		metrics:   m,
		now:       time.Now,
	}
}

// Index moves a pending or failed document through the pipeline.
//
// Precondition failures (not found, no raw text, already indexed, another
// run in flight) leave the status untouched. Once the document has been
// claimed, any failure sets it to error and is returned as *domain.StepError.
func (s *IngestService) Index(ctx context.Context, documentID string) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	started := s.now()

	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if !doc.HasRawText() {
		return nil, fmt.Errorf("%s: %w", documentID, domain.ErrMissingRawText)
	}
	if doc.Status == domain.StatusIndexed {
		return nil, fmt.Errorf("%s: %w", documentID, domain.ErrAlreadyIndexed)
	}

	claimed, err := s.docs.CompareAndSetStatus(ctx, documentID,
		[]domain.DocumentStatus{domain.StatusPending, domain.StatusError}, domain.StatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("claim document %s: %w", documentID, err)
	}
	if !claimed {
		return nil, fmt.Errorf("%s: %w", documentID, domain.ErrIngestionInProgress)
	}

	report, err := s.run(ctx, doc)
	if err != nil {
		s.fail(documentID, err)
		s.metrics.RecordIngest(err, 0, 0)
		return nil, err
	}

	report.Duration = s.now().Sub(started)
	s.metrics.RecordIngest(nil, report.PointsIndexed, report.Duration)
	logger.Info("Indexed %s: %d chunks, %d tokens, est. %s",
		documentID, report.PointsIndexed, report.TokensUsed, domain.FormatCost(report.EstimatedCost))
	return report, nil
}

func (s *IngestService) run(ctx context.Context, doc *domain.Document) (*domain.IngestReport, error) {
	stepErr := func(step domain.IngestStep, err error) error {
		return &domain.StepError{DocumentID: doc.ID, Step: step, Err: err}
	}

	chunks, err := s.chunker.Chunk(doc.RawText)
	if err != nil {
		return nil, stepErr(domain.StepChunk, err)
	}
	if len(chunks) == 0 {
		return nil, stepErr(domain.StepChunk, errors.New("no text chunks were generated"))
	}
	stats := chunker.Stats(chunks)
	logger.Debug("Chunked %s into %d chunks (avg %d chars)", doc.ID, stats.TotalChunks, stats.AverageChunkSize)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	emb, err := s.embedder.EmbedBatch(ctx, texts, s.batchSize)
	if err != nil {
		return nil, stepErr(domain.StepEmbed, err)
	}

	// The chunker never emits blank chunks, so the embedder drops nothing
	// and vectors line up with chunks. UpsertChunks re-checks the shape.
	if err := s.vectors.EnsureCollection(ctx); err != nil {
		return nil, stepErr(domain.StepIndex, err)
	}
	// Points left behind by an earlier failed run would otherwise duplicate.
	if err := s.vectors.DeleteByDocument(ctx, doc.ID); err != nil {
		return nil, stepErr(domain.StepIndex, err)
	}
	n, err := s.vectors.UpsertChunks(ctx, doc.ID, doc.Name, chunks, emb.Vectors)
	if err != nil {
		return nil, stepErr(domain.StepIndex, err)
	}

	if err := s.docs.SetStatus(ctx, doc.ID, domain.StatusIndexed); err != nil {
		return nil, stepErr(domain.StepFinalize, err)
	}

	return &domain.IngestReport{
		DocumentID:    doc.ID,
		Stats:         stats,
		PointsIndexed: n,
		TokensUsed:    emb.TotalTokens,
		EstimatedCost: domain.EmbeddingCost(emb.TotalTokens, emb.Model),
		Model:         emb.Model,
	}, nil
}

// fail marks the document as errored. It uses a fresh context so a
// cancelled request still leaves the record in a retryable state.
func (s *IngestService) fail(documentID string, cause error) {
	logger.Error(cause, "Ingest %s failed", documentID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.docs.SetStatus(ctx, documentID, domain.StatusError); err != nil {
		logger.Warn("Failed to mark %s as error: %v", documentID, err)
	}
}
