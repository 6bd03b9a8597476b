package embedding

import (
	"context"
	"math"
)

// HashDimensions is the fixed vector length produced by HashProvider.
const HashDimensions = 128

// HashProvider is a deterministic, dependency-free embedding provider.
// It does not capture semantic similarity; it exists so the rest of the
// system (storage, ranking, context packing) can be exercised without a
// network-backed model, and as a fallback when no provider is configured.
type HashProvider struct{}

// NewHashProvider constructs a HashProvider.
func NewHashProvider() *HashProvider { return &HashProvider{} }

func (p *HashProvider) Dimensions() int { return HashDimensions }
func (p *HashProvider) ModelID() string { return "hash-v1" }

func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return hashText(text), nil
}

func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashText(t)
	}
	return out, nil
}

// hashText spreads every byte of text across the HashDimensions-wide
// vector, accumulating at dim = i % HashDimensions so longer inputs
// still produce a full vector, then L2-normalizes the result.
func hashText(text string) []float32 {
	vec := make([]float64, HashDimensions)
	for i := 0; i < len(text); i++ {
		dim := i % HashDimensions
		b := float64(text[i])
		vec[dim] += (b - 128) * 0.01 * (math.Log(float64(i)+1) + 1)
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)

	out := make([]float32, HashDimensions)
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

var _ Provider = (*HashProvider)(nil)
