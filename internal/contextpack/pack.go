package contextpack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaizen-dev/memento/pkg/model"
)

// Pack is a set of memories that fit within a token budget, in the
// caller's input order (callers are expected to have pre-sorted by
// relevance before calling Build).
type Pack struct {
	Memories    []*model.Memory
	TotalTokens int
	Budget      int
	ProjectID   *string
}

// Build greedily packs memories — already sorted by relevance, highest
// first — into budget tokens. It stops at the first memory that would
// overflow the remaining budget rather than skipping it and trying the
// next one, so a pack's contents are always a prefix of the input.
func Build(memories []*model.Memory, budget int, projectID *string) Pack {
	remaining := budget
	packed := make([]*model.Memory, 0, len(memories))
	total := 0

	for _, m := range memories {
		cost := EstimateMemoryTokens(m)
		if cost > remaining {
			break
		}
		remaining -= cost
		total += cost
		packed = append(packed, m)
	}

	return Pack{Memories: packed, TotalTokens: total, Budget: budget, ProjectID: projectID}
}

// Format renders pack as Markdown: a header naming the project and
// totals, then one section per memory (title/kind line, a metadata line
// with date/importance/tags, then content), separated by "---" rules.
func Format(pack Pack) string {
	var out strings.Builder

	label := "all"
	if pack.ProjectID != nil && *pack.ProjectID != "" {
		label = *pack.ProjectID
	}
	fmt.Fprintf(&out, "# Project Context: %s (%d memories, ~%d tokens)\n\n", label, len(pack.Memories), pack.TotalTokens)

	for i, m := range pack.Memories {
		if i > 0 {
			out.WriteString("---\n\n")
		}

		fmt.Fprintf(&out, "## [%s] %s\n", m.Kind, m.Title)

		tagsStr := ""
		if len(m.Tags) > 0 {
			tagsStr = " | tags: " + strings.Join(m.Tags, ", ")
		}
		fmt.Fprintf(&out, "*%s | importance: %s%s*\n\n",
			m.CreatedAt.Format("2006-01-02"), formatFloat(m.Importance), tagsStr)

		out.WriteString(m.Content)
		out.WriteString("\n\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// formatFloat renders a float the way Rust's default Display does: the
// shortest decimal that round-trips, no trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
