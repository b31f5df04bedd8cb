// Package markdown strips Markdown syntax down to readable text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/extractors/plaintext"
)

var _ driven.TextExtractor = (*Extractor)(nil)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

var (
	fence        = regexp.MustCompile("(?m)^\\s*```.*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	image        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	link         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	refLinkDef   = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]:\s+\S+.*$`)
	heading      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	headingClose = regexp.MustCompile(`(?m)\s+#+\s*$`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|_|~~)([^\s*_~](?:.*?[^\s*_~])?)(\*\*|__|\*|_|~~)`)
	blockquote   = regexp.MustCompile(`(?m)^\s*>\s?`)
	rule         = regexp.MustCompile(`(?m)^\s*([-*_])(\s*[-*_]){2,}\s*$`)
	bullet       = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	ordered      = regexp.MustCompile(`(?m)^(\s*)\d+[.)]\s+`)
	tableSep     = regexp.MustCompile(`(?m)^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?\s*$`)
	htmlTag      = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Extract keeps the words of the document: link and image text survive,
// code inside fences is kept without the fence lines, and list, quote and
// heading markers are dropped.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	return Strip(plaintext.Clean(string(data))), nil
}

// Strip removes Markdown formatting from s.
func Strip(s string) string {
	s = fence.ReplaceAllString(s, "")
	s = image.ReplaceAllString(s, "$1")
	s = link.ReplaceAllString(s, "$1")
	s = refLinkDef.ReplaceAllString(s, "")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = tableSep.ReplaceAllString(s, "")
	s = rule.ReplaceAllString(s, "")
	s = heading.ReplaceAllString(s, "")
	s = headingClose.ReplaceAllString(s, "")
	s = blockquote.ReplaceAllString(s, "")
	s = bullet.ReplaceAllString(s, "$1")
	s = ordered.ReplaceAllString(s, "$1")
	s = emphasis.ReplaceAllString(s, "$2")
	s = htmlTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "|", " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
