// Package html reduces HTML documents to their visible text.
package html

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/extractors/plaintext"
)

var _ driven.TextExtractor = (*Extractor)(nil)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// hidden never renders as text.
const hidden = "head,script,style,noscript,template,svg,iframe,object"

// blocks end a line of text before and after their content.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Dt: true, atom.Dd: true, atom.Tr: true, atom.Table: true,
	atom.Blockquote: true, atom.Pre: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Aside: true, atom.Main: true,
	atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Figure: true, atom.Figcaption: true,
	atom.Caption: true, atom.Form: true, atom.Fieldset: true, atom.Address: true,
}

// Extract returns the document title, when present, followed by the body text.
// Block elements become line breaks and table cells become spaces.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	doc, err := parse(plaintext.Clean(string(data)))
	if err != nil {
		return "", err
	}

	title := titleOf(doc)
	body := visibleText(doc)
	if title != "" && !strings.HasPrefix(body, title) {
		return title + "\n\n" + body, nil
	}
	return body, nil
}

func parse(src string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// titleOf returns the first <title> text with whitespace collapsed, or "".
func titleOf(doc *goquery.Document) string {
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

// visibleText drops non-rendered elements and returns one trimmed line per
// text block. It removes nodes from doc.
func visibleText(doc *goquery.Document) string {
	doc.Find(hidden).Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func writeText(b *strings.Builder, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		b.WriteString(n.Data)
		return
	case xhtml.CommentNode, xhtml.DoctypeNode:
		return
	}

	block := n.Type == xhtml.ElementNode && blocks[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	switch {
	case block:
		b.WriteByte('\n')
	case n.DataAtom == atom.Td || n.DataAtom == atom.Th:
		b.WriteByte(' ')
	}
}
