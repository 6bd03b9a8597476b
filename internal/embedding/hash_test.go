package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProviderDeterministic(t *testing.T) {
	p := NewHashProvider()
	a, err := p.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashProviderDimensions(t *testing.T) {
	p := NewHashProvider()
	v, err := p.Embed(context.Background(), "short text")
	require.NoError(t, err)
	assert.Len(t, v, HashDimensions)
	assert.Equal(t, HashDimensions, p.Dimensions())
}

func TestHashProviderIsL2Normalized(t *testing.T) {
	p := NewHashProvider()
	v, err := p.Embed(context.Background(), "some reasonably long piece of text to embed")
	require.NoError(t, err)

	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-4)
}

func TestHashProviderEmptyTextYieldsZeroVector(t *testing.T) {
	p := NewHashProvider()
	v, err := p.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, x := range v {
		assert.Equal(t, float32(0), x)
	}
}

func TestHashProviderDistinctTextsDiffer(t *testing.T) {
	p := NewHashProvider()
	a, _ := p.Embed(context.Background(), "alpha")
	b, _ := p.Embed(context.Background(), "beta")
	assert.NotEqual(t, a, b)
}

func TestHashProviderEmbedBatch(t *testing.T) {
	p := NewHashProvider()
	vecs, err := p.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	single, _ := p.Embed(context.Background(), "one")
	assert.Equal(t, single, vecs[0])
}
