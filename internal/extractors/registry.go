package extractors

import (
	"mime"
	"strings"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/extractors/docx"
	"github.com/custodia-labs/docrag/internal/extractors/html"
	"github.com/custodia-labs/docrag/internal/extractors/markdown"
	"github.com/custodia-labs/docrag/internal/extractors/pdf"
	"github.com/custodia-labs/docrag/internal/extractors/plaintext"
)

var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps content types to extractors. Later registrations win.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]driven.TextExtractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]driven.TextExtractor)}
}

// Default returns a registry with every built-in extractor.
// Markdown and HTML are registered after plaintext so they take precedence.
func Default() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	return r
}

// Register adds e under each of its supported types.
func (r *Registry) Register(e driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range e.SupportedMIMETypes() {
		r.byType[normalise(t)] = e
	}
}

// Get returns the extractor for mimeType, ignoring case and parameters
// such as "; charset=utf-8". Returns nil when nothing matches.
func (r *Registry) Get(mimeType string) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[normalise(mimeType)]
}

// Types lists the registered content types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	return out
}

func normalise(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
