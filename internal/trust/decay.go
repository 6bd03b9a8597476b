package trust

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/pkg/model"
)

// DecayConfig parameterizes staleness detection and the optional
// importance-decay recommendation.
type DecayConfig struct {
	InactiveDays    int
	DecayImportance bool
	HalfLifeDays    float64
}

// DefaultDecayConfig matches the spec's literal defaults: 90 days
// inactive before a memory is considered stale, importance decay
// disabled by default, 30-day half-life when enabled.
func DefaultDecayConfig() DecayConfig {
	return DecayConfig{InactiveDays: 90, DecayImportance: false, HalfLifeDays: 30}
}

// PruneAction recommends archiving a stale memory, optionally with a
// decayed importance value. Applying the action is the caller's
// responsibility; analyze only recommends.
type PruneAction struct {
	MemoryID          uuid.UUID
	Title             string
	DaysInactive      int
	ShouldArchive     bool
	CurrentImportance float64
	DecayedImportance *float64
}

// Analyze returns one PruneAction per stale active memory: accessed_at
// at least InactiveDays ago and still active.
func Analyze(memories []*model.Memory, cfg DecayConfig, now time.Time) []PruneAction {
	var actions []PruneAction
	for _, m := range memories {
		if m.Status != model.StatusActive {
			continue
		}
		daysInactive := int(now.Sub(m.AccessedAt).Hours() / 24)
		if daysInactive < cfg.InactiveDays {
			continue
		}

		action := PruneAction{
			MemoryID:          m.ID,
			Title:             m.Title,
			DaysInactive:      daysInactive,
			ShouldArchive:     true,
			CurrentImportance: m.Importance,
		}
		if cfg.DecayImportance {
			decayed := decayedImportance(m.Importance, daysInactive, cfg.HalfLifeDays)
			action.DecayedImportance = &decayed
		}
		actions = append(actions, action)
	}
	return actions
}

func decayedImportance(importance float64, daysInactive int, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		halfLifeDays = 30
	}
	decayed := importance * math.Pow(2, -float64(daysInactive)/halfLifeDays)
	if decayed < 0 {
		return 0
	}
	if decayed > 1 {
		return 1
	}
	return decayed
}
