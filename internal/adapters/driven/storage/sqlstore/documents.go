package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

type documentRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	StorageKey  string         `db:"storage_key"`
	ContentType string         `db:"content_type"`
	Size        int64          `db:"size"`
	Status      string         `db:"status"`
	RawText     sql.NullString `db:"raw_text"`
	OwnerID     string         `db:"owner_id"`
	Source      string         `db:"source"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
}

func (r documentRow) toDomain() *domain.Document {
	return &domain.Document{
		ID:          r.ID,
		Name:        r.Name,
		StorageKey:  r.StorageKey,
		ContentType: r.ContentType,
		Size:        r.Size,
		Status:      domain.DocumentStatus(r.Status),
		RawText:     r.RawText.String,
		OwnerID:     r.OwnerID,
		Source:      domain.DocumentSource(r.Source),
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
}

type documentSummaryRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	ContentType string `db:"content_type"`
	Size        int64  `db:"size"`
	Status      string `db:"status"`
	Source      string `db:"source"`
	OwnerID     string `db:"owner_id"`
	HasRawText  bool   `db:"has_raw_text"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

// CreateDocument inserts a new document. Zero timestamps are filled in.
func (s *Store) CreateDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	now := s.now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	var rawText sql.NullString
	if doc.RawText != "" {
		rawText = sql.NullString{String: doc.RawText, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO documents
			(id, name, storage_key, content_type, size, status, raw_text, owner_id, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		doc.ID, doc.Name, doc.StorageKey, doc.ContentType, doc.Size, string(doc.Status),
		rawText, doc.OwnerID, string(doc.Source), doc.CreatedAt.UnixMilli(), doc.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row, s.rebind(`
		SELECT id, name, storage_key, content_type, size, status, raw_text, owner_id, source, created_at, updated_at
		FROM documents WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err, "document", id)
	}
	return row.toDomain(), nil
}

// ListDocuments returns documents newest first. An empty ownerID lists everything.
func (s *Store) ListDocuments(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error) {
	query := `
		SELECT id, name, content_type, size, status, source, owner_id,
			(raw_text IS NOT NULL AND raw_text <> '') AS has_raw_text,
			created_at, updated_at
		FROM documents`
	var args []any
	if ownerID != "" {
		query += " WHERE owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY created_at DESC, id"

	var rows []documentSummaryRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	out := make([]domain.DocumentSummary, len(rows))
	for i, r := range rows {
		out[i] = domain.DocumentSummary{
			ID:          r.ID,
			Name:        r.Name,
			ContentType: r.ContentType,
			Size:        r.Size,
			Status:      domain.DocumentStatus(r.Status),
			Source:      domain.DocumentSource(r.Source),
			OwnerID:     r.OwnerID,
			HasRawText:  r.HasRawText,
			CreatedAt:   fromMillis(r.CreatedAt),
			UpdatedAt:   fromMillis(r.UpdatedAt),
		}
	}
	return out, nil
}

// SetRawText stores extracted text.
func (s *Store) SetRawText(ctx context.Context, id, text string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE documents SET raw_text = ?, updated_at = ? WHERE id = ?"), text, s.millis(), id)
	if err != nil {
		return fmt.Errorf("setting raw text: %w", err)
	}
	return requireRow(res, "document", id)
}

// SetStatus applies status in one conditional UPDATE that only matches rows
// whose current status may move to it.
func (s *Store) SetStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	return s.moveStatus(ctx, id, domain.TransitionSources(status), status)
}

// ResetStatus returns an indexed or failed document to pending.
func (s *Store) ResetStatus(ctx context.Context, id string) error {
	return s.moveStatus(ctx, id, domain.ResetSources, domain.StatusPending)
}

func (s *Store) moveStatus(ctx context.Context, id string, from []domain.DocumentStatus, to domain.DocumentStatus) error {
	if len(from) == 0 {
		return fmt.Errorf("%w: no transition into %q", domain.ErrInvalidTransition, to)
	}
	moved, err := s.CompareAndSetStatus(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("setting status: %w", err)
	}
	if moved {
		return nil
	}
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("document %s: %w: %s -> %s", id, domain.ErrInvalidTransition, doc.Status, to)
}

// CompareAndSetStatus updates the status in a single conditional UPDATE so
// concurrent callers cannot both win.
func (s *Store) CompareAndSetStatus(ctx context.Context, id string, from []domain.DocumentStatus,
	to domain.DocumentStatus) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("%w: no source statuses", domain.ErrInvalidInput)
	}
	fromStr := make([]string, len(from))
	for i, st := range from {
		fromStr[i] = string(st)
	}

	query, args, err := sqlx.In(
		"UPDATE documents SET status = ?, updated_at = ? WHERE id = ? AND status IN (?)",
		string(to), s.millis(), id, fromStr)
	if err != nil {
		return false, fmt.Errorf("building status update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("compare-and-set status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	// Distinguish a lost race from a missing document.
	if _, err := s.GetDocument(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// DeleteDocument removes the record.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM documents WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireRow(res, "document", id)
}
