package memory

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.DatabaseInspector = (*Inspector)(nil)

// Inspector reports counts for the in-memory stores.
type Inspector struct {
	docs  *DocumentStore
	chats *ChatStore
}

func NewInspector(docs *DocumentStore, chats *ChatStore) *Inspector {
	return &Inspector{docs: docs, chats: chats}
}

func (i *Inspector) DatabaseInfo(_ context.Context) (*domain.DatabaseInfo, error) {
	total, indexed := i.docs.counts()
	return &domain.DatabaseInfo{
		Connected:        true,
		Driver:           "memory",
		Documents:        total,
		IndexedDocuments: indexed,
		Chats:            i.chats.count(),
	}, nil
}
