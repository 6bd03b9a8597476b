// Package privacy implements cooperative visibility filtering and PII
// scrubbing. Privacy is a client-side convention, not an enforced
// authorization boundary: a compromised client can bypass it.
package privacy

import (
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

// legacyCreators is the set of historical created_by values whose private
// memories remain visible to every user, for data captured before
// per-user attribution existed.
var legacyCreators = map[string]struct{}{
	"default": {},
	"hooks":   {},
}

// IsVisible reports whether a memory with the given privacy and
// created_by is visible to currentUser.
func IsVisible(p model.MemoryPrivacy, createdBy, currentUser string) bool {
	switch p {
	case model.PrivacyPublic, model.PrivacyTeam:
		return true
	default: // private
		if createdBy == currentUser {
			return true
		}
		_, legacy := legacyCreators[createdBy]
		return legacy
	}
}

// FilterMemories returns the subset of memories visible to currentUser,
// preserving order.
func FilterMemories(memories []*model.Memory, currentUser string) []*model.Memory {
	out := make([]*model.Memory, 0, len(memories))
	for _, m := range memories {
		if IsVisible(m.Privacy, m.CreatedBy, currentUser) {
			out = append(out, m)
		}
	}
	return out
}

// FilterSearchResults returns the subset of results whose memory is
// visible to currentUser, preserving order.
func FilterSearchResults(results []storage.ScoredMemory, currentUser string) []storage.ScoredMemory {
	out := make([]storage.ScoredMemory, 0, len(results))
	for _, r := range results {
		if r.Memory != nil && IsVisible(r.Memory.Privacy, r.Memory.CreatedBy, currentUser) {
			out = append(out, r)
		}
	}
	return out
}

// ShouldExport reports whether a memory at privacy p clears threshold,
// using the public(0) > team(1) > private(2) openness ranking: more open
// privacy levels have a lower (more exportable) rank.
func ShouldExport(p, threshold model.MemoryPrivacy) bool {
	return model.PrivacyRank(p) <= model.PrivacyRank(threshold)
}
