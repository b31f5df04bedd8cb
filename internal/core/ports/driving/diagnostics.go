package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DiagnosticsService reports on external dependencies.
type DiagnosticsService interface {
	// Database returns record store diagnostics.
	Database(ctx context.Context) (*domain.DatabaseInfo, error)

	// Collection returns vector collection statistics.
	Collection(ctx context.Context) (*domain.CollectionInfo, error)

	// EnsureCollection creates the vector collection if absent.
	EnsureCollection(ctx context.Context) error

	// Services pings every configured external service.
	Services(ctx context.Context) []domain.ServiceStatus
}
