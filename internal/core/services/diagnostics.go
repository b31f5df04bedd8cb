package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

var _ driving.DiagnosticsService = (*DiagnosticsService)(nil)

const servicePingTimeout = 5 * time.Second

// DiagnosticsService reports on the record store, the vector index and the AI providers.
// The embedding and LLM services may be nil when not configured.
type DiagnosticsService struct {
	db        driven.DatabaseInspector
	vectors   driven.VectorIndex
	embedding driven.EmbeddingService
	llm       driven.LLMService
}

func NewDiagnosticsService(
	db driven.DatabaseInspector,
	vectors driven.VectorIndex,
	embedding driven.EmbeddingService,
	llm driven.LLMService,
) *DiagnosticsService {
	return &DiagnosticsService{db: db, vectors: vectors, embedding: embedding, llm: llm}
}

func (s *DiagnosticsService) Database(ctx context.Context) (*domain.DatabaseInfo, error) {
	info, err := s.db.DatabaseInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("database info: %w", err)
	}
	info.Size = domain.FormatFileSize(info.SizeBytes)
	return info, nil
}

// Collection returns collection statistics. An unreachable store is
// reported as ErrVectorIndexUnavailable before CollectionInfo is tried.
func (s *DiagnosticsService) Collection(ctx context.Context) (*domain.CollectionInfo, error) {
	if !s.vectors.HealthCheck(ctx) {
		return nil, domain.ErrVectorIndexUnavailable
	}
	info, err := s.vectors.CollectionInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection info: %w", err)
	}
	return info, nil
}

func (s *DiagnosticsService) EnsureCollection(ctx context.Context) error {
	if err := s.vectors.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	return nil
}

// Services pings each dependency with its own short timeout.
func (s *DiagnosticsService) Services(ctx context.Context) []domain.ServiceStatus {
	statuses := make([]domain.ServiceStatus, 0, 3)

	statuses = append(statuses, ping(ctx, "embedding", s.embedding != nil, func(ctx context.Context) (string, error) {
		return s.embedding.ModelName(), s.embedding.Ping(ctx)
	}))
	statuses = append(statuses, ping(ctx, "llm", s.llm != nil, func(ctx context.Context) (string, error) {
		return s.llm.ModelName(), s.llm.Ping(ctx)
	}))
	statuses = append(statuses, ping(ctx, "vector_index", s.vectors != nil, func(ctx context.Context) (string, error) {
		if !s.vectors.HealthCheck(ctx) {
			return "", domain.ErrVectorIndexUnavailable
		}
		return "", nil
	}))

	return statuses
}

func ping(ctx context.Context, name string, configured bool, fn func(context.Context) (string, error)) domain.ServiceStatus {
	if !configured {
		return domain.ServiceStatus{Name: name, Detail: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, servicePingTimeout)
	defer cancel()

	detail, err := fn(ctx)
	if err != nil {
		return domain.ServiceStatus{Name: name, Detail: err.Error()}
	}
	return domain.ServiceStatus{Name: name, Available: true, Detail: detail}
}
