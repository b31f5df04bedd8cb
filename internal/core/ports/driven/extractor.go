package driven

import "context"

// TextExtractor turns stored file bytes into raw text for chunking.
// Each extractor handles specific MIME types (e.g., PDF, Markdown).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the plain text content of data.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorRegistry selects an extractor by MIME type.
type ExtractorRegistry interface {
	// Get returns the extractor for mimeType, or nil if none is registered.
	Get(mimeType string) TextExtractor
}
