// Package docx extracts paragraph text from Word (.docx) uploads.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/extractors/plaintext"
)

var _ driven.TextExtractor = (*Extractor)(nil)

// MIMEType is the content type of a Word document.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const documentPart = "word/document.xml"

// Extractor reads word/document.xml from the OOXML archive.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Extract joins the text runs of each paragraph and separates paragraphs
// with a newline. Tables and headers are not read.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentPart, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", documentPart, err)
		}
		return parseDocumentXML(content)
	}
	return "", fmt.Errorf("%w: %s missing", domain.ErrInvalidInput, documentPart)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, documentPart, err)
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
	}
	return plaintext.Clean(strings.TrimSpace(b.String())), nil
}
