package retrieval

import (
	"context"
	"math"
	"testing"

	"github.com/mkm-lab/analysis-engine/pkg/ai/fallback"
	"github.com/mkm-lab/analysis-engine/pkg/common"
)

type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return f.vec, nil
}

func (f *fixedEmbedder) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = f.vec
	}
	return out, nil
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRetrieveRanksBySimilarity(t *testing.T) {
	query := []float32{1, 0, 0}
	e := NewEngine(&fixedEmbedder{vec: query}, 3)

	corpus := []common.Document{
		{ID: "far", Title: "far", Embedding: []float32{0, 1, 0}},
		{ID: "near", Title: "near", Embedding: []float32{1, 0.1, 0}},
		{ID: "mid", Title: "mid", Embedding: []float32{1, 1, 0}},
	}

	got, err := e.Retrieve(context.Background(), "query", corpus, 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(got))
	}

	wantOrder := []string{"near", "mid", "far"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("results[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Similarity > got[i-1].Similarity {
			t.Errorf("results not in descending similarity order at %d", i)
		}
	}
}

func TestRetrieveSkipsMismatchedDimensions(t *testing.T) {
	e := NewEngine(&fixedEmbedder{vec: []float32{1, 0, 0}}, 3)

	corpus := []common.Document{
		{ID: "ok", Embedding: []float32{1, 0, 0}},
		{ID: "short", Embedding: []float32{1, 0}},
		{ID: "unembedded"},
	}

	got, err := e.Retrieve(context.Background(), "query", corpus, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("results = %v, want only the matching-dimension document", got)
	}
}

func TestRetrieveDefaultTopK(t *testing.T) {
	e := NewEngine(&fixedEmbedder{vec: []float32{1, 0, 0}}, 3)

	corpus := make([]common.Document, 5)
	for i := range corpus {
		corpus[i] = common.Document{ID: string(rune('a' + i)), Embedding: []float32{1, 0, 0}}
	}

	got, err := e.Retrieve(context.Background(), "query", corpus, 0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len(results) = %d, want default top 3", len(got))
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	e := NewEngine(&fixedEmbedder{vec: []float32{1, 0, 0}}, 3)

	got, err := e.Retrieve(context.Background(), "query", nil, 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("results = %v, want empty", got)
	}
}

func TestRetrieveWithFallbackEmbedder(t *testing.T) {
	embedder := fallback.NewClient(fallback.NewClientParams{})
	e := NewEngine(embedder, 384)
	ctx := context.Background()

	text := "meditation reduces stress"
	vec, err := embedder.GenerateEmbedding(ctx, []byte(text))
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}
	other, err := embedder.GenerateEmbedding(ctx, []byte("unrelated topic entirely"))
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}

	corpus := []common.Document{
		{ID: "same", Embedding: vec},
		{ID: "other", Embedding: other},
	}

	got, err := e.Retrieve(ctx, text, corpus, 1)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "same" {
		t.Fatalf("results = %v, want the identically-embedded document first", got)
	}
	if math.Abs(got[0].Similarity-1) > 1e-6 {
		t.Errorf("self similarity = %f, want 1", got[0].Similarity)
	}
}
