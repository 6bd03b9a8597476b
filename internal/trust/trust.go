// Package trust scores memories independently of ranking and recommends
// prune/archive actions for stale memories.
package trust

import (
	"github.com/kaizen-dev/memento/pkg/model"
)

// Breakdown is the weighted multi-factor trust score, surfaced to UIs
// alongside the overall value.
type Breakdown struct {
	Overall       float64
	Verification  float64
	Source        float64
	Contradiction float64
	Quality       float64
}

const (
	weightVerification  = 0.40
	weightSource        = 0.30
	weightContradiction = 0.20
	weightQuality       = 0.10

	minContentLenForQuality = 50
)

// Score computes trust for a memory given its contradiction count (the
// number of `contradicts` relations incident on it).
func Score(m *model.Memory, contradictionCount int) Breakdown {
	b := Breakdown{
		Verification:  verificationScore(m.Verification),
		Source:        sourceScore(m.Source.Kind),
		Contradiction: contradictionScore(contradictionCount),
		Quality:       qualityScore(m),
	}
	b.Overall = weightVerification*b.Verification + weightSource*b.Source +
		weightContradiction*b.Contradiction + weightQuality*b.Quality
	if b.Overall < 0 {
		b.Overall = 0
	}
	if b.Overall > 1 {
		b.Overall = 1
	}
	return b
}

func verificationScore(v model.VerificationStatus) float64 {
	switch v {
	case model.VerificationVerified:
		return 1.0
	case model.VerificationDisputed:
		return 0.2
	case model.VerificationOutdated:
		return 0.1
	default: // unverified
		return 0.5
	}
}

func sourceScore(k model.SourceKind) float64 {
	switch k {
	case model.SourceManual:
		return 0.9
	case model.SourceDerived:
		return 0.7
	case model.SourceImport:
		return 0.6
	default: // auto_capture
		return 0.5
	}
}

func contradictionScore(count int) float64 {
	switch {
	case count == 0:
		return 1.0
	case count == 1:
		return 0.5
	default:
		return 0.2
	}
}

func qualityScore(m *model.Memory) float64 {
	hasTags := len(m.Tags) > 0
	longEnough := len([]rune(m.Content)) >= minContentLenForQuality
	switch {
	case hasTags && longEnough:
		return 1.0
	case hasTags || longEnough:
		return 0.6
	default:
		return 0.3
	}
}
