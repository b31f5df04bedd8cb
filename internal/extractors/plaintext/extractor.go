// Package plaintext passes textual uploads through with light cleanup.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles text formats that need no parsing.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
		"text/x-log",
		"text/yaml",
		"text/toml",
		"text/xml",
		"application/json",
		"application/xml",
		"application/x-yaml",
	}
}

// Extract drops a UTF-8 byte order mark, replaces invalid byte
// sequences and normalises line endings to \n.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	return Clean(string(data)), nil
}

// Clean is shared by the other extractors for their final pass.
func Clean(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToValidUTF8(s, "\ufffd")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}
