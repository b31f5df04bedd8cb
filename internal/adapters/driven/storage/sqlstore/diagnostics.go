package sqlstore

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DatabaseInfo reports connectivity, server version, size and row counts.
// An unreachable database is reported as Connected=false, not as an error.
func (s *Store) DatabaseInfo(ctx context.Context) (*domain.DatabaseInfo, error) {
	info := &domain.DatabaseInfo{Driver: s.driver}

	var one int
	if err := s.db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return info, nil
	}
	info.Connected = true

	var err error
	switch s.driver {
	case DriverPostgres:
		err = s.postgresInfo(ctx, info)
	default:
		err = s.sqliteInfo(ctx, info)
	}
	if err != nil {
		return nil, err
	}
	info.Size = domain.FormatFileSize(info.SizeBytes)

	if err := s.db.GetContext(ctx, &info.Documents, "SELECT COUNT(*) FROM documents"); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.db.GetContext(ctx, &info.IndexedDocuments, s.rebind(
		"SELECT COUNT(*) FROM documents WHERE status = ?"), string(domain.StatusIndexed)); err != nil {
		return nil, fmt.Errorf("counting indexed documents: %w", err)
	}
	if err := s.db.GetContext(ctx, &info.Chats, "SELECT COUNT(*) FROM chats"); err != nil {
		return nil, fmt.Errorf("counting chats: %w", err)
	}
	return info, nil
}

func (s *Store) postgresInfo(ctx context.Context, info *domain.DatabaseInfo) error {
	if err := s.db.GetContext(ctx, &info.Version, "SELECT version()"); err != nil {
		return fmt.Errorf("server version: %w", err)
	}
	if err := s.db.GetContext(ctx, &info.SizeBytes, "SELECT pg_database_size(current_database())"); err != nil {
		return fmt.Errorf("database size: %w", err)
	}
	return nil
}

func (s *Store) sqliteInfo(ctx context.Context, info *domain.DatabaseInfo) error {
	var version string
	if err := s.db.GetContext(ctx, &version, "SELECT sqlite_version()"); err != nil {
		return fmt.Errorf("server version: %w", err)
	}
	info.Version = "SQLite " + version

	var pageCount, pageSize int64
	if err := s.db.GetContext(ctx, &pageCount, "PRAGMA page_count"); err != nil {
		return fmt.Errorf("page count: %w", err)
	}
	if err := s.db.GetContext(ctx, &pageSize, "PRAGMA page_size"); err != nil {
		return fmt.Errorf("page size: %w", err)
	}
	info.SizeBytes = pageCount * pageSize
	return nil
}
