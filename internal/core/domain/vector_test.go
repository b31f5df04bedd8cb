package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunkPayload_Validate(t *testing.T) {
	base := func() ChunkPayload {
		return ChunkPayload{
			ChunkID:    "c",
			Category:   CategoryDocumentChunk,
			CreatedAt:  time.Now(),
			DocumentID: "doc-1",
			ChunkIndex: 0,
			Text:       "hello",
			StartIndex: 0,
			EndIndex:   5,
		}
	}

	p := base()
	assert.NoError(t, p.Validate())

	tests := []struct {
		name   string
		mutate func(p *ChunkPayload)
	}{
		{"missing doc id", func(p *ChunkPayload) { p.DocumentID = "" }},
		{"missing category", func(p *ChunkPayload) { p.Category = "" }},
		{"negative index", func(p *ChunkPayload) { p.ChunkIndex = -1 }},
		{"inverted offsets", func(p *ChunkPayload) { p.StartIndex, p.EndIndex = 5, 2 }},
		{"zero timestamp", func(p *ChunkPayload) { p.CreatedAt = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.mutate(&p)
			assert.True(t, errors.Is(p.Validate(), ErrInvalidPayload))
		})
	}
}

func TestRetrievalResult(t *testing.T) {
	ok := RetrievalOK([]SearchHit{{ID: "a"}})
	assert.False(t, ok.Failed())
	assert.Len(t, ok.Hits, 1)

	failed := RetrievalFailed(errors.New("boom"))
	assert.True(t, failed.Failed())
	assert.Empty(t, failed.Hits)
}

func TestStepError(t *testing.T) {
	inner := errors.New("quota")
	err := error(&StepError{DocumentID: "d1", Step: StepEmbed, Err: inner})
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "embed step failed")

	var stepErr *StepError
	assert.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepEmbed, stepErr.Step)
}
