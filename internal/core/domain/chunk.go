package domain

// TextChunk is one contiguous window of a document's raw text.
// Offsets are rune positions in the source text, end exclusive.
type TextChunk struct {
	// Content is the window text.
	Content string

	// StartIndex is the offset of the first character.
	StartIndex int

	// EndIndex is the offset one past the last character.
	EndIndex int

	// Index is the 0-based position of the chunk in the document.
	Index int
}

// Len returns the chunk length in characters.
func (c TextChunk) Len() int {
	return c.EndIndex - c.StartIndex
}

// ChunkStats summarises a chunking run for reporting.
type ChunkStats struct {
	TotalChunks      int `json:"totalChunks"`
	TotalCharacters  int `json:"totalCharacters"`
	AverageChunkSize int `json:"averageChunkSize"`
	MinChunkSize     int `json:"minChunkSize"`
	MaxChunkSize     int `json:"maxChunkSize"`
}
