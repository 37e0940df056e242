package fallback

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math/rand"
)

const defaultDimensions = 384

// Client is a deterministic stand-in for a real embedding service.
// Vectors are derived from a content hash of the input, so identical
// text always yields a bit-identical vector. The vectors carry no
// semantic meaning; the only guaranteed property is determinism.
type Client struct {
	dimensions int
}

// NewClientParams contains configuration for creating a fallback Client.
type NewClientParams struct {
	Dimensions int
}

// NewClient creates a deterministic fallback embedding client.
func NewClient(params NewClientParams) *Client {
	dim := params.Dimensions
	if dim <= 0 {
		dim = defaultDimensions
	}
	return &Client{dimensions: dim}
}

// GenerateEmbedding derives a pseudo-embedding from the MD5 hash of
// the input: the first four hash bytes seed a PRNG that emits the
// vector components in [0, 1).
func (c *Client) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	sum := md5.Sum(input)
	seed := binary.BigEndian.Uint32(sum[:4])

	rng := rand.New(rand.NewSource(int64(seed)))
	out := make([]float32, c.dimensions)
	for i := range out {
		out[i] = float32(rng.Float64())
	}
	return out, nil
}

// GenerateEmbeddings embeds each input independently.
func (c *Client) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		vec, err := c.GenerateEmbedding(ctx, input)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
