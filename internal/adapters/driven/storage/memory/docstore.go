package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps document records in a map guarded by one mutex,
// which also makes CompareAndSetStatus atomic.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	now       func() time.Time
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		now:       time.Now,
	}
}

func (s *DocumentStore) CreateDocument(_ context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrAlreadyExists)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now().UTC()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	s.documents[doc.ID] = *doc
	return nil
}

func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

// ListDocuments returns summaries newest first. An empty ownerID lists everyone's.
func (s *DocumentStore) ListDocuments(_ context.Context, ownerID string) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DocumentSummary, 0, len(s.documents))
	for _, d := range s.documents {
		if ownerID != "" && d.OwnerID != ownerID {
			continue
		}
		out = append(out, domain.DocumentSummary{
			ID:          d.ID,
			Name:        d.Name,
			ContentType: d.ContentType,
			Size:        d.Size,
			Status:      d.Status,
			Source:      d.Source,
			OwnerID:     d.OwnerID,
			HasRawText:  d.HasRawText(),
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *DocumentStore) SetRawText(_ context.Context, id, text string) error {
	return s.update(id, func(d *domain.Document) { d.RawText = text })
}

// SetStatus applies status if the lifecycle allows the edge from the current one.
func (s *DocumentStore) SetStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	return s.move(id, func(from domain.DocumentStatus) (domain.DocumentStatus, error) {
		return domain.TransitionStatus(from, status)
	})
}

func (s *DocumentStore) ResetStatus(_ context.Context, id string) error {
	return s.move(id, domain.ResetStatus)
}

func (s *DocumentStore) move(id string, next func(domain.DocumentStatus) (domain.DocumentStatus, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	status, err := next(d.Status)
	if err != nil {
		return fmt.Errorf("document %s: %w", id, err)
	}
	d.Status = status
	d.UpdatedAt = s.now().UTC()
	s.documents[id] = d
	return nil
}

func (s *DocumentStore) CompareAndSetStatus(
	_ context.Context, id string, from []domain.DocumentStatus, to domain.DocumentStatus,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents[id]
	if !ok {
		return false, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if !slices.Contains(from, d.Status) {
		return false, nil
	}
	d.Status = to
	d.UpdatedAt = s.now().UTC()
	s.documents[id] = d
	return true, nil
}

func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(s.documents, id)
	return nil
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

func (s *DocumentStore) update(id string, fn func(*domain.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	fn(&d)
	d.UpdatedAt = s.now().UTC()
	s.documents[id] = d
	return nil
}

// counts feeds the database inspector.
func (s *DocumentStore) counts() (total, indexed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.documents {
		total++
		if d.Status == domain.StatusIndexed {
			indexed++
		}
	}
	return total, indexed
}
