package ai

import (
	"context"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

type fakeEmbedding struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeEmbedding) EmbedBatch(_ context.Context, texts []string) (*driven.EmbeddingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = []float32{float32(len(t))}
	}
	return &driven.EmbeddingResponse{Vectors: vecs, TokensUsed: len(texts) * 2}, nil
}

func (f *fakeEmbedding) Dimensions() int { return 1 }
func (f *fakeEmbedding) ModelName() string { return "fake" }
func (f *fakeEmbedding) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedding) Close() error { return nil }

type fakeLLM struct {
	err   error
	calls int
}

func (f *fakeLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error { return nil }
