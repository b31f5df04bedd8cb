package ai

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// CachedEmbedding remembers vectors per text so repeated chat queries skip
// the provider. Token usage only counts texts that missed the cache.
type CachedEmbedding struct {
	driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedding wraps next with an LRU cache holding up to size vectors.
func NewCachedEmbedding(next driven.EmbeddingService, size int) (*CachedEmbedding, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedding{EmbeddingService: next, cache: cache}, nil
}

func (c *CachedEmbedding) key(text string) string {
	return c.ModelName() + "\x00" + text
}

// EmbedBatch serves cached vectors and embeds the misses in one call.
func (c *CachedEmbedding) EmbedBatch(ctx context.Context, texts []string) (*driven.EmbeddingResponse, error) {
	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(c.key(text)); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return &driven.EmbeddingResponse{Vectors: vectors}, nil
	}

	resp, err := c.EmbeddingService.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(resp.Vectors) != len(missing) {
		return nil, fmt.Errorf("embedding cache: expected %d vectors, got %d", len(missing), len(resp.Vectors))
	}
	for j, idx := range missingIdx {
		vectors[idx] = resp.Vectors[j]
		c.cache.Add(c.key(missing[j]), resp.Vectors[j])
	}

	return &driven.EmbeddingResponse{Vectors: vectors, TokensUsed: resp.TokensUsed}, nil
}

// Len reports how many vectors are cached.
func (c *CachedEmbedding) Len() int {
	return c.cache.Len()
}
