package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

func TestUnconfigured(t *testing.T) {
	ctx := context.Background()
	svc := &Services{}

	embed := svc.EmbeddingOrUnconfigured()
	_, err := embed.EmbedBatch(ctx, []string{"x"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, embed.Ping(ctx), domain.ErrEmbeddingUnavailable)

	llm := svc.LLMOrUnconfigured()
	_, err = llm.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, llm.Ping(ctx), domain.ErrLLMUnavailable)

	svc.Close()
}
