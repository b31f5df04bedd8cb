package domain

// Embedding model identifiers with known pricing and dimensions.
const (
	ModelTextEmbedding3Large = "text-embedding-3-large"
	ModelTextEmbedding3Small = "text-embedding-3-small"
	ModelTextEmbeddingAda002 = "text-embedding-ada-002"

	// DefaultEmbeddingModel is the primary model. Unknown models fall back to its tables.
	DefaultEmbeddingModel = ModelTextEmbedding3Large
)

// embeddingPricePer1K is the USD price per 1000 tokens.
var embeddingPricePer1K = map[string]float64{
	ModelTextEmbedding3Large: 0.00013,
	ModelTextEmbedding3Small: 0.00002,
	ModelTextEmbeddingAda002: 0.0001,
}

var embeddingDimensions = map[string]int{
	ModelTextEmbedding3Large: 3072,
	ModelTextEmbedding3Small: 1536,
	ModelTextEmbeddingAda002: 1536,
	// Local Ollama models.
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// EmbeddingCost estimates the cost in USD of embedding tokenCount tokens.
func EmbeddingCost(tokenCount int, model string) float64 {
	price, ok := embeddingPricePer1K[model]
	if !ok {
		price = embeddingPricePer1K[DefaultEmbeddingModel]
	}
	return float64(tokenCount) / 1000 * price
}

// EmbeddingDimensions returns the vector size produced by model.
func EmbeddingDimensions(model string) int {
	if dims, ok := embeddingDimensions[model]; ok {
		return dims
	}
	return embeddingDimensions[DefaultEmbeddingModel]
}

// EmbeddingVector is one embedding and the tokens spent producing it.
type EmbeddingVector struct {
	Vector     []float32
	TokenCount int
	Model      string
}

// BatchEmbedding is the result of embedding a list of texts.
// Vectors[i] corresponds to the i-th non-empty input.
type BatchEmbedding struct {
	Vectors     [][]float32
	TotalTokens int
	Model       string
}
