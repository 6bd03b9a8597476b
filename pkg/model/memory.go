// Package model defines the core entity types of the memory engine:
// Memory, Relation, Embedding, Session, MemoryEvent, and TimelineEntry,
// along with their builders, validation, and identity rules.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength and MaxContentLength bound the two free-text fields a
// Memory carries. These are conservative defaults; internal/config may
// expose them as configurable limits, but the package-level constants are
// what validation falls back to.
const (
	MaxTitleLength   = 500
	MaxContentLength = 100_000

	// SummaryTruncateAt is the number of characters preserved verbatim
	// before a "..." suffix is appended. Content at or below this length
	// is copied into Summary unchanged.
	SummaryTruncateAt = 200
)

// Memory is the primary entity: a typed, taggable knowledge record with an
// optional embedding and relations to other memories.
type Memory struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Kind    MemoryKind `json:"kind"`
	Summary string    `json:"summary"`

	Tags []string `json:"tags"`

	Source MemorySource `json:"source"`
	Scope  MemoryScope  `json:"scope"`

	Importance float64 `json:"importance"`

	Status       MemoryStatus        `json:"status"`
	Privacy      MemoryPrivacy       `json:"privacy"`
	Verification VerificationStatus  `json:"verification"`

	ProjectID *string    `json:"project_id,omitempty"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`

	CreatedBy string `json:"created_by"`

	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

// New constructs a Memory with all three timestamps set to now, importance
// defaulted to 0.5, scope global, status active, privacy private,
// verification unverified, and the auto-derived Summary computed from
// content.
func New(title, content string, kind MemoryKind, createdBy string) *Memory {
	now := time.Now().UTC()
	m := &Memory{
		ID:           uuid.Must(uuid.NewV7()),
		Title:        title,
		Content:      content,
		Kind:         kind,
		Tags:         []string{},
		Source:       ManualSource(),
		Scope:        ScopeGlobal,
		Importance:   0.5,
		Status:       StatusActive,
		Privacy:      PrivacyPrivate,
		Verification: VerificationUnverified,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
		AccessedAt:   now,
	}
	m.Summary = deriveSummary(content)
	return m
}

// deriveSummary returns the first SummaryTruncateAt characters of content,
// suffixed with "..." if content was truncated; if content is at or under
// the threshold, it is returned unchanged.
func deriveSummary(content string) string {
	runes := []rune(content)
	if len(runes) <= SummaryTruncateAt {
		return content
	}
	return string(runes[:SummaryTruncateAt]) + "..."
}

// NormalizeTags lowercases every tag, drops empty strings, and removes
// duplicates while preserving first-occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// WithTags replaces the memory's tags with a normalized copy of tags.
func (m *Memory) WithTags(tags []string) *Memory {
	m.Tags = NormalizeTags(tags)
	return m
}

// WithImportance sets importance, clamped to [0, 1].
func (m *Memory) WithImportance(importance float64) *Memory {
	m.Importance = clamp(importance, 0, 1)
	return m
}

// WithProject sets the project id and switches scope to project.
func (m *Memory) WithProject(projectID string) *Memory {
	m.ProjectID = &projectID
	m.Scope = ScopeProject
	return m
}

// WithSession sets the session id and switches scope to session.
func (m *Memory) WithSession(sessionID uuid.UUID) *Memory {
	m.SessionID = &sessionID
	m.Scope = ScopeSession
	return m
}

// WithPrivacy sets the privacy level.
func (m *Memory) WithPrivacy(p MemoryPrivacy) *Memory {
	m.Privacy = p
	return m
}

// WithVerification sets the verification status.
func (m *Memory) WithVerification(v VerificationStatus) *Memory {
	m.Verification = v
	return m
}

// WithSource replaces the source variant.
func (m *Memory) WithSource(s MemorySource) *Memory {
	m.Source = s
	return m
}

// Touch advances UpdatedAt to now. Callers invoke this on any mutation.
func (m *Memory) Touch(now time.Time) {
	m.UpdatedAt = now
}

// RecordAccess advances AccessedAt to now. Policy: at least on explicit
// fetch; bulk timeline reads are not required to call this.
func (m *Memory) RecordAccess(now time.Time) {
	m.AccessedAt = now
}

// EmbeddingText returns the text that should be embedded for this memory:
// title, then content, then a tag summary — matching the teacher's
// convention of folding tags into the embedded text so tag-only queries
// still retrieve relevant memories.
func (m *Memory) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(m.Title)
	b.WriteString("\n\n")
	b.WriteString(m.Content)
	if len(m.Tags) > 0 {
		b.WriteString("\n\ntags: ")
		b.WriteString(strings.Join(m.Tags, ", "))
	}
	return b.String()
}

// IsActive reports whether the memory's status is active.
func (m *Memory) IsActive() bool { return m.Status == StatusActive }

// TransitionTo moves the memory's status if the transition is allowed by
// the one-way state machine (active -> {archived, superseded}); returns
// false and leaves status unchanged otherwise.
func (m *Memory) TransitionTo(to MemoryStatus, now time.Time) bool {
	if !CanTransitionTo(m.Status, to) {
		return false
	}
	m.Status = to
	m.UpdatedAt = now
	return true
}
