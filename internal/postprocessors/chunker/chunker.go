// Package chunker splits raw document text into overlapping windows.
//
// Text is split recursively on a priority list of separators (paragraph,
// line, word, character). Pieces that still exceed the chunk size are split
// with the next separator, and hard-cut when none is left. Pieces are then
// merged greedily into windows of at most ChunkSize characters, each window
// repeating up to ChunkOverlap trailing characters of the previous one.
package chunker

import (
	"fmt"
	"unicode"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order: paragraph, line, word, character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunker splits text into domain.TextChunk windows.
type Chunker struct {
	chunkSize  int
	overlap    int
	separators [][]rune
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// WithSeparators replaces the separator priority list.
// An empty string separator means split into characters.
func WithSeparators(seps ...string) Option {
	return func(c *Chunker) {
		if len(seps) > 0 {
			c.separators = toRunes(seps)
		}
	}
}

// New creates a chunker. Overlap must be smaller than the chunk size.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: toRunes(DefaultSeparators),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, c.chunkSize)
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidInput, c.overlap, c.chunkSize)
	}
	return c, nil
}

// FromConfig builds a chunker from generic config parsed from TOML or YAML.
// Supported keys: chunk_size (int), chunk_overlap (int).
func FromConfig(cfg map[string]any) (*Chunker, error) {
	var opts []Option
	if size, ok := intFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, WithChunkSize(size))
	}
	if overlap, ok := intFromConfig(cfg, "chunk_overlap"); ok {
		opts = append(opts, WithOverlap(overlap))
	}
	return New(opts...)
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// span is a half-open rune range of the source text.
type span struct {
	start, end int
}

func (s span) len() int { return s.end - s.start }

// Chunk splits text into ordered windows with source offsets.
func (c *Chunker) Chunk(text string) ([]domain.TextChunk, error) {
	src := []rune(text)
	if isBlank(src) {
		return nil, domain.ErrEmptyInput
	}

	pieces := c.split(src, span{0, len(src)}, c.separators, nil)
	windows := c.merge(pieces)

	chunks := make([]domain.TextChunk, 0, len(windows))
	for _, w := range windows {
		w = trim(src, w)
		if w.len() == 0 {
			continue
		}
		// A window whose new pieces were all whitespace adds nothing.
		if n := len(chunks); n > 0 && w.end <= chunks[n-1].EndIndex {
			continue
		}
		chunks = append(chunks, domain.TextChunk{
			Content:    string(src[w.start:w.end]),
			StartIndex: w.start,
			EndIndex:   w.end,
			Index:      len(chunks),
		})
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyInput
	}
	return chunks, nil
}

// split appends to out the pieces of seg, each at most chunkSize long.
// Separators stay attached to the end of the piece they terminate, so the
// pieces tile the source without gaps.
func (c *Chunker) split(src []rune, seg span, seps [][]rune, out []span) []span {
	sepIdx := len(seps) - 1
	for i, sep := range seps {
		if len(sep) == 0 || indexRunes(src[seg.start:seg.end], sep) >= 0 {
			sepIdx = i
			break
		}
	}

	var sep []rune
	var rest [][]rune
	if sepIdx >= 0 {
		sep = seps[sepIdx]
		rest = seps[sepIdx+1:]
	}

	if len(sep) == 0 {
		for i := seg.start; i < seg.end; i++ {
			out = append(out, span{i, i + 1})
		}
		return out
	}

	start := seg.start
	for start < seg.end {
		end := seg.end
		if idx := indexRunes(src[start:seg.end], sep); idx >= 0 {
			end = start + idx + len(sep)
		}
		piece := span{start, end}
		switch {
		case piece.len() <= c.chunkSize:
			out = append(out, piece)
		case len(rest) > 0:
			out = c.split(src, piece, rest, out)
		default:
			out = c.hardCut(piece, out)
		}
		start = end
	}
	return out
}

func (c *Chunker) hardCut(seg span, out []span) []span {
	for start := seg.start; start < seg.end; start += c.chunkSize {
		end := start + c.chunkSize
		if end > seg.end {
			end = seg.end
		}
		out = append(out, span{start, end})
	}
	return out
}

// merge groups consecutive pieces into windows of at most chunkSize,
// carrying up to overlap characters of trailing pieces into the next window.
func (c *Chunker) merge(pieces []span) []span {
	var windows []span
	var current []span
	total := 0

	for _, p := range pieces {
		if total > 0 && total+p.len() > c.chunkSize {
			windows = append(windows, span{current[0].start, current[len(current)-1].end})
			for total > c.overlap || (total > 0 && total+p.len() > c.chunkSize) {
				total -= current[0].len()
				current = current[1:]
			}
		}
		current = append(current, p)
		total += p.len()
	}
	if len(current) > 0 {
		windows = append(windows, span{current[0].start, current[len(current)-1].end})
	}
	return windows
}

// Stats summarises chunk sizes for reporting.
func Stats(chunks []domain.TextChunk) domain.ChunkStats {
	if len(chunks) == 0 {
		return domain.ChunkStats{}
	}

	stats := domain.ChunkStats{
		TotalChunks:  len(chunks),
		MinChunkSize: chunks[0].Len(),
		MaxChunkSize: chunks[0].Len(),
	}
	for _, ch := range chunks {
		n := ch.Len()
		stats.TotalCharacters += n
		if n < stats.MinChunkSize {
			stats.MinChunkSize = n
		}
		if n > stats.MaxChunkSize {
			stats.MaxChunkSize = n
		}
	}
	// Round half up.
	stats.AverageChunkSize = (2*stats.TotalCharacters + stats.TotalChunks) / (2 * stats.TotalChunks)
	return stats
}

func trim(src []rune, w span) span {
	for w.start < w.end && unicode.IsSpace(src[w.start]) {
		w.start++
	}
	for w.end > w.start && unicode.IsSpace(src[w.end-1]) {
		w.end--
	}
	return w
}

func isBlank(src []rune) bool {
	for _, r := range src {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func indexRunes(hay, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j := range needle {
			if hay[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func toRunes(seps []string) [][]rune {
	out := make([][]rune, len(seps))
	for i, s := range seps {
		out[i] = []rune(s)
	}
	return out
}

// intFromConfig extracts an int from generic config.
// Handles int, int64, and float64 types that may come from TOML/JSON/YAML parsing.
func intFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
