// Package contextpack greedily packs ranked memories into a token budget
// and formats the result as paste-ready Markdown for pasting into an LLM
// prompt window.
package contextpack

import (
	"strings"

	"github.com/kaizen-dev/memento/pkg/model"
)

// memoryOverhead and indexOverhead are the flat per-item token costs
// added on top of title/content/tags, covering the Markdown structure
// around each entry.
const (
	memoryOverhead = 20
	indexOverhead  = 15
)

// EstimateTokens approximates token count as ⌈len(bytes)/4⌉. This
// overestimates for non-ASCII text, which is an accepted tradeoff for a
// cheap, allocation-free estimate.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// EstimateMemoryTokens estimates the token cost of packing m in full:
// title + content + joined tags, plus a flat overhead. Summary is
// excluded since it's derived from content.
func EstimateMemoryTokens(m *model.Memory) int {
	return EstimateTokens(m.Title) + EstimateTokens(m.Content) + EstimateTokens(strings.Join(m.Tags, ", ")) + memoryOverhead
}

// EstimateIndexTokens estimates the token cost of a compact MemoryIndex:
// title + joined tags, plus a smaller flat overhead than a full memory.
func EstimateIndexTokens(idx model.MemoryIndex) int {
	return EstimateTokens(idx.Title) + EstimateTokens(strings.Join(idx.Tags, ", ")) + indexOverhead
}
