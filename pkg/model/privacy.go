package model

import "github.com/kaizen-dev/memento/internal/kerrors"

// MemoryPrivacy controls who may see a memory. Privacy is cooperative and
// client-side (internal/privacy), not an enforced authorization boundary.
type MemoryPrivacy string

const (
	PrivacyPublic  MemoryPrivacy = "public"
	PrivacyTeam    MemoryPrivacy = "team"
	PrivacyPrivate MemoryPrivacy = "private"
)

func (p MemoryPrivacy) IsValid() bool {
	switch p {
	case PrivacyPublic, PrivacyTeam, PrivacyPrivate:
		return true
	default:
		return false
	}
}

func (p MemoryPrivacy) String() string { return string(p) }

func ParseMemoryPrivacy(s string) (MemoryPrivacy, error) {
	p := MemoryPrivacy(s)
	if !p.IsValid() {
		return "", kerrors.InvalidInput("unknown privacy: " + s)
	}
	return p, nil
}

// PrivacyRank orders privacy levels from most to least open:
// public(0) > team(1) > private(2). Used by should_export's monotonicity.
func PrivacyRank(p MemoryPrivacy) int {
	switch p {
	case PrivacyPublic:
		return 0
	case PrivacyTeam:
		return 1
	default:
		return 2
	}
}

// VerificationStatus records how much the content of a memory has been
// validated.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationDisputed   VerificationStatus = "disputed"
	VerificationOutdated   VerificationStatus = "outdated"
)

func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationUnverified, VerificationVerified, VerificationDisputed, VerificationOutdated:
		return true
	default:
		return false
	}
}

func (v VerificationStatus) String() string { return string(v) }

func ParseVerificationStatus(s string) (VerificationStatus, error) {
	v := VerificationStatus(s)
	if !v.IsValid() {
		return "", kerrors.InvalidInput("unknown verification status: " + s)
	}
	return v, nil
}

// MemoryScope controls the visibility scope a memory is anchored to.
type MemoryScope string

const (
	ScopeGlobal  MemoryScope = "global"
	ScopeProject MemoryScope = "project"
	ScopeSession MemoryScope = "session"
)

func (s MemoryScope) IsValid() bool {
	switch s {
	case ScopeGlobal, ScopeProject, ScopeSession:
		return true
	default:
		return false
	}
}

func (s MemoryScope) String() string { return string(s) }

// MemoryStatus is the lifecycle status of a memory. Transitions are
// one-way: active -> {archived, superseded}.
type MemoryStatus string

const (
	StatusActive     MemoryStatus = "active"
	StatusArchived   MemoryStatus = "archived"
	StatusSuperseded MemoryStatus = "superseded"
)

func (s MemoryStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusSuperseded:
		return true
	default:
		return false
	}
}

func (s MemoryStatus) String() string { return string(s) }

// CanTransitionTo reports whether the one-way status state machine allows
// moving from `from` to `to`.
func CanTransitionTo(from, to MemoryStatus) bool {
	if from == to {
		return true
	}
	if from == StatusActive && (to == StatusArchived || to == StatusSuperseded) {
		return true
	}
	return false
}
