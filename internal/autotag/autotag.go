// Package autotag asks an LLM collaborator to suggest tags and an
// importance score for a memory, then parses its response tolerantly —
// the model is asked for strict JSON but routinely wraps it in markdown
// fences anyway.
package autotag

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kaizen-dev/memento/internal/llm"
	"github.com/kaizen-dev/memento/pkg/model"
)

// SystemPrompt instructs the LLM collaborator on the exact tagging rules
// and required output shape.
const SystemPrompt = `You are a developer knowledge-base tagger. Given a memory's title, content, and kind, suggest appropriate tags and an importance score.

Rules:
- Return 3-8 specific, lowercase tags (e.g. "rust", "helix-db", "config", "wsl2", "bug-fix")
- Do NOT use generic tags like "auto-capture", "memory", "note", "info"
- Tags should reflect the specific technology, concept, file, or pattern described
- Importance is 0.0-1.0 where:
  - 0.1-0.3: trivial observations, routine operations
  - 0.4-0.6: useful patterns, common errors, configuration details
  - 0.7-0.8: important decisions, critical bugs, architectural patterns
  - 0.9-1.0: critical facts, security issues, data-loss scenarios

Return ONLY valid JSON (no markdown fences, no extra text):
{"tags":["tag1","tag2","tag3"],"importance":0.5}`

// defaultImportance is substituted when the LLM omits the field.
const defaultImportance = 0.5

// Result is the suggested tags and importance for one memory.
type Result struct {
	Tags       []string
	Importance float64
}

type rawResponse struct {
	Tags       []string `json:"tags"`
	Importance *float64 `json:"importance"`
}

// Tag prompts gen for tags/importance on m and parses the response. It
// returns (nil, nil) — "no result" — when the LLM errors or returns an
// empty tag list; callers treat both as "leave the memory untagged"
// rather than a hard failure. gen has no system-prompt parameter of its
// own, so SystemPrompt is folded into the single completion prompt.
func Tag(ctx context.Context, gen llm.TextGenerator, m *model.Memory) (*Result, error) {
	prompt := SystemPrompt + "\n\nTitle: " + m.Title + "\nKind: " + string(m.Kind) + "\nContent: " + m.Content
	raw, err := gen.Complete(ctx, prompt)
	if err != nil {
		return nil, nil
	}
	return Parse(raw), nil
}

// Parse tolerantly decodes an LLM response into a Result: it strips
// markdown code fences, lowercases and drops empty tags, and clamps
// importance to [0, 1], defaulting to 0.5 when omitted. Returns nil if
// parsing fails or no tags survive.
func Parse(raw string) *Result {
	cleaned := stripFences(raw)

	var resp rawResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil
	}

	tags := make([]string, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}

	importance := defaultImportance
	if resp.Importance != nil {
		importance = *resp.Importance
	}
	if importance < 0 {
		importance = 0
	}
	if importance > 1 {
		importance = 1
	}

	return &Result{Tags: tags, Importance: importance}
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
