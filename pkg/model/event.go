package model

import (
	"time"

	"github.com/google/uuid"
)

// EventAction is what happened to a memory, recorded in the history log.
type EventAction string

const (
	ActionCreated    EventAction = "created"
	ActionUpdated    EventAction = "updated"
	ActionDeleted    EventAction = "deleted"
	ActionArchived   EventAction = "archived"
	ActionImported   EventAction = "imported"
	ActionSuperseded EventAction = "superseded"
)

func (a EventAction) String() string { return string(a) }

// FieldChange records one field's before/after value in an update event.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// MemoryEvent is a single audit-log entry.
type MemoryEvent struct {
	ID          uuid.UUID     `json:"id"`
	MemoryID    uuid.UUID     `json:"memory_id"`
	Action      EventAction   `json:"action"`
	Actor       string        `json:"actor"`
	Timestamp   time.Time     `json:"timestamp"`
	Changes     []FieldChange `json:"changes,omitempty"`
	MemoryTitle *string       `json:"memory_title,omitempty"`
}

// NewMemoryEvent constructs an event with a fresh id and timestamp now.
func NewMemoryEvent(memoryID uuid.UUID, action EventAction, actor string) *MemoryEvent {
	return &MemoryEvent{
		ID:        uuid.Must(uuid.NewV7()),
		MemoryID:  memoryID,
		Action:    action,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
}

func (e *MemoryEvent) WithTitle(title string) *MemoryEvent {
	e.MemoryTitle = &title
	return e
}

func (e *MemoryEvent) WithChanges(changes []FieldChange) *MemoryEvent {
	e.Changes = changes
	return e
}

// TimelineEntry is a compact projection of a Memory for list views.
type TimelineEntry struct {
	ID           uuid.UUID          `json:"id"`
	Kind         MemoryKind         `json:"kind"`
	Title        string             `json:"title"`
	Importance   float64            `json:"importance"`
	Verification VerificationStatus `json:"verification"`
	CreatedAt    time.Time          `json:"created_at"`
	Privacy      MemoryPrivacy      `json:"privacy"`
	CreatedBy    string             `json:"created_by"`
}

// TimelineEntryFromMemory projects a Memory into its TimelineEntry.
func TimelineEntryFromMemory(m *Memory) TimelineEntry {
	return TimelineEntry{
		ID:           m.ID,
		Kind:         m.Kind,
		Title:        m.Title,
		Importance:   m.Importance,
		Verification: m.Verification,
		CreatedAt:    m.CreatedAt,
		Privacy:      m.Privacy,
		CreatedBy:    m.CreatedBy,
	}
}

// MemoryIndex is a compact, scored projection used by the context packer
// and ranking result sets.
type MemoryIndex struct {
	ID    uuid.UUID  `json:"id"`
	Title string     `json:"title"`
	Kind  MemoryKind `json:"kind"`
	Tags  []string   `json:"tags"`
	Score float64    `json:"score"`
}

// MemoryIndexFrom projects a Memory plus a ranking score into a MemoryIndex.
func MemoryIndexFrom(m *Memory, score float64) MemoryIndex {
	return MemoryIndex{ID: m.ID, Title: m.Title, Kind: m.Kind, Tags: m.Tags, Score: score}
}
