package model

import "github.com/kaizen-dev/memento/internal/kerrors"

// MemoryKind classifies the role a memory plays (observation, decision, etc).
type MemoryKind string

const (
	KindObservation MemoryKind = "observation"
	KindDecision    MemoryKind = "decision"
	KindPattern     MemoryKind = "pattern"
	KindError       MemoryKind = "error"
	KindFix         MemoryKind = "fix"
	KindPreference  MemoryKind = "preference"
	KindFact        MemoryKind = "fact"
	KindLesson      MemoryKind = "lesson"
	KindTodo        MemoryKind = "todo"
	KindProcedure   MemoryKind = "procedure"
)

var validKinds = map[MemoryKind]struct{}{
	KindObservation: {}, KindDecision: {}, KindPattern: {}, KindError: {},
	KindFix: {}, KindPreference: {}, KindFact: {}, KindLesson: {},
	KindTodo: {}, KindProcedure: {},
}

// IsValid reports whether k is one of the closed set of memory kinds.
func (k MemoryKind) IsValid() bool {
	_, ok := validKinds[k]
	return ok
}

func (k MemoryKind) String() string {
	return string(k)
}

// ParseMemoryKind parses s into a MemoryKind, rejecting anything outside
// the closed enum.
func ParseMemoryKind(s string) (MemoryKind, error) {
	k := MemoryKind(s)
	if !k.IsValid() {
		return "", kerrors.InvalidInput("unknown memory kind: " + s)
	}
	return k, nil
}
