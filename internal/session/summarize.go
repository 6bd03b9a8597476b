package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaizen-dev/memento/internal/llm"
	"github.com/kaizen-dev/memento/pkg/model"
)

// summarizePrompt instructs the LLM collaborator to compress a session's
// buffered tool-use and prompt events into a small number of durable
// memories, the way a developer would write up their own session notes.
const summarizePrompt = `You are compressing one coding-agent session's buffered activity log into a short list of durable memories worth keeping. Each buffered line is one tool use or user intent captured during the session.

Rules:
- Merge related events (same file, same task) into one memory rather than one memory per line
- Prefer decisions, fixes, and error resolutions over routine narration
- kind must be one of: observation, decision, pattern, error, fix, preference, fact, lesson, todo, procedure
- importance is 0.0-1.0
- Return 1-5 memories, fewer for a quiet session

Return ONLY valid JSON (no markdown fences, no extra text), an array:
[{"title":"...","content":"...","kind":"decision","importance":0.5,"tags":["tag1"]}]

Session events:
`

// LLMSummarizer asks an LLM collaborator to compress a session's buffered
// events into memories, folding summarizePrompt into the single
// completion string the same way internal/autotag does — gen has no
// system-prompt parameter of its own.
type LLMSummarizer struct {
	Gen llm.TextGenerator
}

type rawSummary struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Kind       string   `json:"kind"`
	Importance float64  `json:"importance"`
	Tags       []string `json:"tags"`
}

// Summarize implements Summarizer.
func (s LLMSummarizer) Summarize(ctx context.Context, _ string, events []BufferedEvent) ([]Summary, error) {
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", e.EventType, e.Title, e.Content)
	}

	raw, err := s.Gen.Complete(ctx, summarizePrompt+b.String())
	if err != nil {
		return nil, err
	}
	return parseSummaries(raw), nil
}

// parseSummaries tolerantly decodes the LLM's JSON array response,
// stripping markdown fences the way autotag.Parse does, and drops
// entries with no title or content.
func parseSummaries(raw string) []Summary {
	cleaned := stripFences(raw)

	var rawSummaries []rawSummary
	if err := json.Unmarshal([]byte(cleaned), &rawSummaries); err != nil {
		return nil
	}

	summaries := make([]Summary, 0, len(rawSummaries))
	for _, rs := range rawSummaries {
		if rs.Title == "" || rs.Content == "" {
			continue
		}
		kind := model.MemoryKind(rs.Kind)
		if !kind.IsValid() {
			kind = model.KindObservation
		}
		summaries = append(summaries, Summary{
			Title:      rs.Title,
			Content:    rs.Content,
			Kind:       kind,
			Tags:       rs.Tags,
			Importance: clampImportance(rs.Importance),
		})
	}
	return summaries
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
