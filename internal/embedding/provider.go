// Package embedding defines the EmbeddingProvider contract and its four
// implementations: a deterministic hash-based provider for offline/test
// use, a local CPU-bound provider, and two HTTP-based providers speaking
// OpenAI-compatible and Gemini embedding APIs.
package embedding

import "context"

// Provider is the uniform contract every embedding backend implements.
type Provider interface {
	// Embed returns the embedding vector for a single piece of text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions is the fixed length of every vector this provider returns.
	Dimensions() int
	// ModelID identifies the concrete model backing this provider, stored
	// alongside memories so a provider switch is detectable.
	ModelID() string
}
