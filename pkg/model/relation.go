package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/kerrors"
)

// RelationType is the closed set of typed edges between memories.
type RelationType string

const (
	RelationCausedBy    RelationType = "caused_by"
	RelationFixes        RelationType = "fixes"
	RelationSupersedes   RelationType = "supersedes"
	RelationRelated      RelationType = "related"
	RelationContradicts  RelationType = "contradicts"
)

func (r RelationType) IsValid() bool {
	switch r {
	case RelationCausedBy, RelationFixes, RelationSupersedes, RelationRelated, RelationContradicts:
		return true
	default:
		return false
	}
}

func (r RelationType) String() string { return string(r) }

func ParseRelationType(s string) (RelationType, error) {
	r := RelationType(s)
	if !r.IsValid() {
		return "", kerrors.InvalidInput("unknown relation type: " + s)
	}
	return r, nil
}

// Relation is a directed, typed, strength-weighted edge between two
// memories. Uniqueness key: (SourceID, TargetID, Type).
type Relation struct {
	ID         uuid.UUID    `json:"id"`
	SourceID   uuid.UUID    `json:"source_id"`
	TargetID   uuid.UUID    `json:"target_id"`
	Type       RelationType `json:"relation_type"`
	Strength   float64      `json:"strength"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewRelation constructs a Relation with a fresh id and strength clamped
// to [0, 1].
func NewRelation(sourceID, targetID uuid.UUID, relType RelationType, strength float64) *Relation {
	now := time.Now().UTC()
	return &Relation{
		ID:        uuid.Must(uuid.NewV7()),
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      relType,
		Strength:  clamp(strength, 0, 1),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
