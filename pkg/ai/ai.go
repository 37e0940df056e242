package ai

import "context"

// EmbeddingClient defines the interface for turning text into
// fixed-length vectors. Implementations wrap an external embedding
// service; the fallback backend exists purely as a deterministic
// development and testing seam. Downstream code never depends on which
// backend produced a vector.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
}

// ModelMetrics contains performance metrics from embedding operations.
type ModelMetrics struct {
	InputTokens int   `json:"input_tokens"`
	TotalTokens int   `json:"total_tokens"`
	DurationMs  int64 `json:"duration_ms"`
}
