// Package extractors turns stored upload bytes into raw text.
//
// Each sub-package handles a family of content types:
//   - plaintext: text/plain, text/csv and other textual formats, passed through
//   - markdown: strips Markdown syntax
//   - html: strips tags, scripts and styles
//   - pdf: shells out to pdftotext (poppler)
//   - docx: reads paragraph text from the Word XML part
//
// Registry picks an extractor for a document's content type.
package extractors
