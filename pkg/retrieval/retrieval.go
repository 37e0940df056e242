package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mkm-lab/analysis-engine/pkg/ai"
	"github.com/mkm-lab/analysis-engine/pkg/common"
)

const defaultTopK = 3

// ScoredDocument pairs a corpus document with its similarity to a
// query.
type ScoredDocument struct {
	common.Document
	Similarity float64 `json:"similarity"`
}

// Engine ranks corpus documents against a query by embedding cosine
// similarity.
type Engine struct {
	embedder   ai.EmbeddingClient
	dimensions int
}

// NewEngine creates a retrieval engine bound to one embedding backend.
// Documents whose vectors do not match dimensions are skipped during
// ranking rather than failing the query.
func NewEngine(embedder ai.EmbeddingClient, dimensions int) *Engine {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &Engine{embedder: embedder, dimensions: dimensions}
}

// Retrieve embeds the query and returns the top k most similar corpus
// documents in descending similarity order. Unembedded and
// wrong-dimension documents never appear in results. A non-positive k
// defaults to three.
func (e *Engine) Retrieve(ctx context.Context, query string, corpus []common.Document, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		k = defaultTopK
	}

	queryVec, err := e.embedder.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVec) != e.dimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, want %d: %w", len(queryVec), e.dimensions, common.ErrDimensionMismatch)
	}

	scored := make([]ScoredDocument, 0, len(corpus))
	for _, doc := range corpus {
		if len(doc.Embedding) != e.dimensions {
			continue
		}
		scored = append(scored, ScoredDocument{
			Document:   doc,
			Similarity: CosineSimilarity(queryVec, doc.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// CosineSimilarity computes the cosine of the angle between two
// vectors, accumulating in float64 for stability. Mismatched lengths
// and zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
