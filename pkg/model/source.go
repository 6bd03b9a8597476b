package model

import "github.com/google/uuid"

// SourceKind is the tag of the MemorySource variant union.
type SourceKind string

const (
	SourceManual      SourceKind = "manual"
	SourceDerived     SourceKind = "derived"
	SourceImport      SourceKind = "import"
	SourceAutoCapture SourceKind = "auto_capture"
)

// MemorySource is a tagged union: manual | derived{from_ids} | import |
// auto_capture{hook}. Go has no sum types, so this carries every variant's
// payload with the inactive fields left zero.
type MemorySource struct {
	Kind    SourceKind  `json:"kind"`
	FromIDs []uuid.UUID `json:"from_ids,omitempty"`
	Hook    string      `json:"hook,omitempty"`
}

func ManualSource() MemorySource { return MemorySource{Kind: SourceManual} }

func DerivedSource(fromIDs []uuid.UUID) MemorySource {
	return MemorySource{Kind: SourceDerived, FromIDs: fromIDs}
}

func ImportSource() MemorySource { return MemorySource{Kind: SourceImport} }

func AutoCaptureSource(hook string) MemorySource {
	return MemorySource{Kind: SourceAutoCapture, Hook: hook}
}
