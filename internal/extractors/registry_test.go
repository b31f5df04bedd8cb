package extractors

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/extractors/docx"
	"github.com/custodia-labs/docrag/internal/extractors/html"
	"github.com/custodia-labs/docrag/internal/extractors/markdown"
	"github.com/custodia-labs/docrag/internal/extractors/pdf"
	"github.com/custodia-labs/docrag/internal/extractors/plaintext"
)

func TestDefault_Selection(t *testing.T) {
	r := Default()

	tests := []struct {
		mimeType string
		want     any
	}{
		{"text/plain", &plaintext.Extractor{}},
		{"text/csv", &plaintext.Extractor{}},
		{"TEXT/PLAIN; charset=utf-8", &plaintext.Extractor{}},
		{"text/markdown", &markdown.Extractor{}},
		{"text/html", &html.Extractor{}},
		{"application/pdf", &pdf.Extractor{}},
		{docx.MIMEType, &docx.Extractor{}},
	}

	for _, tc := range tests {
		t.Run(tc.mimeType, func(t *testing.T) {
			got := r.Get(tc.mimeType)
			require.NotNil(t, got)
			assert.IsType(t, tc.want, got)
		})
	}
}

func TestRegistry_Unknown(t *testing.T) {
	r := Default()

	assert.Nil(t, r.Get("image/png"))
	assert.Nil(t, r.Get(""))
}

type stubExtractor struct{ types []string }

func (s stubExtractor) SupportedMIMETypes() []string { return s.types }
func (s stubExtractor) Extract(context.Context, []byte) (string, error) {
	return "stub", nil
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(stubExtractor{types: []string{"text/plain"}})

	got, err := r.Get("text/plain").Extract(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "stub", got)
}

func TestRegistry_Types(t *testing.T) {
	r := NewRegistry()
	r.Register(stubExtractor{types: []string{"b/b", "A/A"}})

	types := r.Types()
	sort.Strings(types)
	assert.Equal(t, []string{"a/a", "b/b"}, types)
}
