package contextpack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaizen-dev/memento/pkg/model"
)

func TestEstimateTokensEmpty(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
}

func TestEstimateTokensShort(t *testing.T) {
	assert.Equal(t, 2, EstimateTokens("hello"))
}

func TestEstimateTokensLong(t *testing.T) {
	assert.Equal(t, 100, EstimateTokens(strings.Repeat("a", 400)))
}

func TestEstimateTokensExactMultiple(t *testing.T) {
	assert.Equal(t, 2, EstimateTokens("abcdefgh"))
}

func TestEstimateMemoryTokens(t *testing.T) {
	m := model.New("Test title", "Some content here", model.KindObservation, "test")
	m.Tags = []string{"rust", "testing"}
	assert.Equal(t, 32, EstimateMemoryTokens(m))
}

func TestEstimateMemoryTokensNoTags(t *testing.T) {
	m := model.New("Some title", "Some content", model.KindObservation, "test")
	m.Tags = nil
	assert.Greater(t, EstimateMemoryTokens(m), 20)
}

func TestEstimateIndexTokens(t *testing.T) {
	m := model.New("Test title", "content", model.KindObservation, "test")
	m.Tags = []string{"rust"}
	idx := model.MemoryIndexFrom(m, 1.0)
	assert.Equal(t, 19, EstimateIndexTokens(idx))
}
