package model

import (
	"fmt"
	"strings"

	"github.com/kaizen-dev/memento/internal/kerrors"
)

// CreateMemoryInput is the wire shape for creating a memory. Importance
// is a plain float64, so an omitted value decodes as 0; this type applies
// no default of its own.
type CreateMemoryInput struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Kind       MemoryKind `json:"kind"`
	Tags       []string   `json:"tags,omitempty"`
	Importance float64    `json:"importance"`
	Scope      *MemoryScope `json:"scope,omitempty"`
	Privacy    *MemoryPrivacy `json:"privacy,omitempty"`
	ProjectID  *string    `json:"project_id,omitempty"`
}

// UpdateMemoryInput is the recognized patch shape for update_memory: each
// non-nil field overwrites, nil leaves unchanged.
type UpdateMemoryInput struct {
	Title        *string             `json:"title,omitempty"`
	Content      *string             `json:"content,omitempty"`
	Tags         *[]string           `json:"tags,omitempty"`
	Importance   *float64            `json:"importance,omitempty"`
	Status       *MemoryStatus       `json:"status,omitempty"`
	Privacy      *MemoryPrivacy      `json:"privacy,omitempty"`
	Verification *VerificationStatus `json:"verification,omitempty"`
	Summary      *string             `json:"summary,omitempty"`
	AccessedAt   *string             `json:"accessed_at,omitempty"`
}

// ValidateCreateInput enforces the title/content length limits and
// importance range that every construction path (builder, storage layer,
// import) must respect.
func ValidateCreateInput(title, content string, importance float64) error {
	if strings.TrimSpace(title) == "" {
		return kerrors.InvalidInput("title cannot be empty")
	}
	if len([]rune(title)) > MaxTitleLength {
		return kerrors.InvalidInput(fmt.Sprintf("title exceeds maximum length of %d", MaxTitleLength))
	}
	if len([]rune(content)) > MaxContentLength {
		return kerrors.InvalidInput(fmt.Sprintf("content exceeds maximum length of %d", MaxContentLength))
	}
	if importance < 0 || importance > 1 {
		return kerrors.InvalidInput("importance must be between 0.0 and 1.0")
	}
	return nil
}

// ValidateUpdateInput validates only the fields present in the patch.
func ValidateUpdateInput(input *UpdateMemoryInput) error {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return kerrors.InvalidInput("title cannot be empty")
	}
	if input.Title != nil && len([]rune(*input.Title)) > MaxTitleLength {
		return kerrors.InvalidInput(fmt.Sprintf("title exceeds maximum length of %d", MaxTitleLength))
	}
	if input.Content != nil && len([]rune(*input.Content)) > MaxContentLength {
		return kerrors.InvalidInput(fmt.Sprintf("content exceeds maximum length of %d", MaxContentLength))
	}
	if input.Importance != nil && (*input.Importance < 0 || *input.Importance > 1) {
		return kerrors.InvalidInput("importance must be between 0.0 and 1.0")
	}
	return nil
}
