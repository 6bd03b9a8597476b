package model

import (
	"time"

	"github.com/google/uuid"
)

// Session groups memories captured during one coding-agent session.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   *string    `json:"project_id,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Summary     *string    `json:"summary,omitempty"`
	MemoryCount int        `json:"memory_count"`
}

// NewSession starts a session now, optionally scoped to a project.
func NewSession(projectID *string) *Session {
	return &Session{
		ID:        uuid.Must(uuid.NewV7()),
		ProjectID: projectID,
		StartedAt: time.Now().UTC(),
	}
}

// End marks the session ended at now and attaches a summary.
func (s *Session) End(now time.Time, summary string) {
	s.EndedAt = &now
	if summary != "" {
		s.Summary = &summary
	}
}
