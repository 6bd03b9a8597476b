package embedding

import (
	"context"
	"sync"
)

// LocalDefaultDimensions matches the original's default local model
// (a small sentence-transformer class of model, BGE-small-sized).
const LocalDefaultDimensions = 384

// LocalProvider is a CPU-bound, in-process embedding provider. No ONNX
// runtime binding appears anywhere in the example corpus this module was
// grounded on, so unlike the other three providers this one cannot be
// wired to a real third-party inference library; Embed falls back to
// the same deterministic hashing scheme as HashProvider, truncated or
// zero-padded to the provider's configured dimensions (LocalDefaultDimensions
// unless NewLocalProvider is given another value) so callers see the
// provider's declared dimensionality. Swapping in a real ONNX/ggml binding later
// only touches this file.
type LocalProvider struct {
	mu         sync.Mutex
	dimensions int
	model      string
}

// NewLocalProvider constructs a LocalProvider with the given model name.
// dimensions <= 0 selects LocalDefaultDimensions.
func NewLocalProvider(model string, dimensions int) *LocalProvider {
	if dimensions <= 0 {
		dimensions = LocalDefaultDimensions
	}
	if model == "" {
		model = "bge-small-en-v1.5"
	}
	return &LocalProvider{dimensions: dimensions, model: model}
}

func (p *LocalProvider) Dimensions() int { return p.dimensions }
func (p *LocalProvider) ModelID() string { return p.model }

// Embed runs inference under a mutex: the underlying model, whatever it
// ends up being, is assumed not to be safe for concurrent use, matching
// the teacher's pattern of serializing CPU-bound work behind a lock
// rather than assuming thread safety from an unfamiliar native library.
func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return resize(hashText(text), p.dimensions), nil
}

func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// resize truncates or zero-pads vec to exactly n entries.
func resize(vec []float32, n int) []float32 {
	out := make([]float32, n)
	copy(out, vec)
	return out
}

var _ Provider = (*LocalProvider)(nil)
