package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProviderEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "embedContent"))
		w.Write([]byte(`{"embedding":{"values":[0.4,0.5]}}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.4, 0.5}, vec)
}

func TestGeminiProviderBatchFallsBackToSequentialOnFailure(t *testing.T) {
	// batchEmbedContents is now retried around the circuit breaker, so a
	// persistently failing batch endpoint is hit up to the breaker's
	// consecutive-failure threshold (3) before the breaker opens and
	// EmbedBatch degrades to one embedContent call per text.
	var batchCalls, singleCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "batchEmbedContents") {
			batchCalls++
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		singleCalls++
		w.Write([]byte(`{"embedding":{"values":[0.1,0.2]}}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 3, batchCalls)
	assert.Equal(t, 2, singleCalls)
	assert.Len(t, vecs, 2)
}

func TestGeminiProviderBatchSucceedsWithoutFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings":[{"values":[0.1]},{"values":[0.2]}]}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1}, {0.2}}, vecs)
}

func TestGeminiProviderDefaults(t *testing.T) {
	p := NewGeminiProvider(GeminiConfig{APIKey: "k"})
	assert.Equal(t, "text-embedding-004", p.ModelID())
	assert.Equal(t, 768, p.Dimensions())
}
