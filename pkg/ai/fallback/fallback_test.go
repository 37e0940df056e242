package fallback

import (
	"context"
	"reflect"
	"testing"
)

func TestGenerateEmbeddingDeterminism(t *testing.T) {
	c := NewClient(NewClientParams{})
	ctx := context.Background()

	first, err := c.GenerateEmbedding(ctx, []byte("stress and heart rate variability"))
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := c.GenerateEmbedding(ctx, []byte("stress and heart rate variability"))
		if err != nil {
			t.Fatalf("GenerateEmbedding() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("embedding differs between identical calls at iteration %d", i)
		}
	}
}

func TestGenerateEmbeddingDimensions(t *testing.T) {
	tests := []struct {
		name   string
		params NewClientParams
		want   int
	}{
		{name: "default dimensions", params: NewClientParams{}, want: 384},
		{name: "custom dimensions", params: NewClientParams{Dimensions: 16}, want: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.params)
			vec, err := c.GenerateEmbedding(context.Background(), []byte("text"))
			if err != nil {
				t.Fatalf("GenerateEmbedding() error = %v", err)
			}
			if len(vec) != tt.want {
				t.Errorf("len(vec) = %d, want %d", len(vec), tt.want)
			}
		})
	}
}

func TestGenerateEmbeddingDistinctInputs(t *testing.T) {
	c := NewClient(NewClientParams{})
	ctx := context.Background()

	a, err := c.GenerateEmbedding(ctx, []byte("meditation reduces stress"))
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}
	b, err := c.GenerateEmbedding(ctx, []byte("exercise improves sleep quality"))
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}

	if reflect.DeepEqual(a, b) {
		t.Error("distinct inputs produced identical vectors")
	}
}

func TestGenerateEmbeddingsMatchesSingle(t *testing.T) {
	c := NewClient(NewClientParams{})
	ctx := context.Background()

	inputs := [][]byte{[]byte("first"), []byte("second")}
	batch, err := c.GenerateEmbeddings(ctx, inputs)
	if err != nil {
		t.Fatalf("GenerateEmbeddings() error = %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("len(batch) = %d, want 2", len(batch))
	}

	for i, input := range inputs {
		single, err := c.GenerateEmbedding(ctx, input)
		if err != nil {
			t.Fatalf("GenerateEmbedding() error = %v", err)
		}
		if !reflect.DeepEqual(batch[i], single) {
			t.Errorf("batch[%d] differs from single-call embedding", i)
		}
	}
}
