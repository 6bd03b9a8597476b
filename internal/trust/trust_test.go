package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kaizen-dev/memento/pkg/model"
)

func TestScoreFullyTrusted(t *testing.T) {
	m := model.New("t", "a reasonably long piece of content for quality scoring purposes", model.KindFact, "claude").
		WithTags([]string{"x"}).
		WithVerification(model.VerificationVerified)
	m.Source = model.ManualSource()

	b := Score(m, 0)
	assert.InDelta(t, 1.0, b.Verification, 1e-9)
	assert.InDelta(t, 0.9, b.Source, 1e-9)
	assert.InDelta(t, 1.0, b.Contradiction, 1e-9)
	assert.InDelta(t, 1.0, b.Quality, 1e-9)
	assert.InDelta(t, 0.40+0.27+0.20+0.10, b.Overall, 1e-9)
}

func TestScoreDisputedWithContradictions(t *testing.T) {
	m := model.New("t", "short", model.KindFact, "claude").WithVerification(model.VerificationDisputed)
	m.Source = model.AutoCaptureSource("PostToolUse")

	b := Score(m, 2)
	assert.InDelta(t, 0.2, b.Verification, 1e-9)
	assert.InDelta(t, 0.5, b.Source, 1e-9)
	assert.InDelta(t, 0.2, b.Contradiction, 1e-9)
	assert.InDelta(t, 0.3, b.Quality, 1e-9)
}

func TestScoreClampedToUnitRange(t *testing.T) {
	m := model.New("t", "x", model.KindFact, "claude")
	b := Score(m, 0)
	assert.GreaterOrEqual(t, b.Overall, 0.0)
	assert.LessOrEqual(t, b.Overall, 1.0)
}

func TestAnalyzeSkipsRecentAndInactiveStatus(t *testing.T) {
	now := time.Now().UTC()

	recent := model.New("recent", "c", model.KindFact, "claude")
	recent.AccessedAt = now.Add(-10 * 24 * time.Hour)

	staleArchived := model.New("archived", "c", model.KindFact, "claude")
	staleArchived.AccessedAt = now.Add(-200 * 24 * time.Hour)
	staleArchived.Status = model.StatusArchived

	staleActive := model.New("stale", "c", model.KindFact, "claude")
	staleActive.AccessedAt = now.Add(-100 * 24 * time.Hour)
	staleActive.Importance = 0.8

	actions := Analyze([]*model.Memory{recent, staleArchived, staleActive}, DefaultDecayConfig(), now)
	if assert.Len(t, actions, 1) {
		assert.Equal(t, staleActive.ID, actions[0].MemoryID)
		assert.True(t, actions[0].ShouldArchive)
		assert.Nil(t, actions[0].DecayedImportance)
	}
}

func TestAnalyzeDecaysImportanceWhenEnabled(t *testing.T) {
	now := time.Now().UTC()
	m := model.New("stale", "c", model.KindFact, "claude")
	m.AccessedAt = now.Add(-120 * 24 * time.Hour)
	m.Importance = 0.8

	cfg := DefaultDecayConfig()
	cfg.DecayImportance = true

	actions := Analyze([]*model.Memory{m}, cfg, now)
	require_ := assert.New(t)
	require_.Len(actions, 1)
	require_.NotNil(actions[0].DecayedImportance)
	assert.InDelta(t, 0.8*0.0625, *actions[0].DecayedImportance, 1e-9)
}

func TestDecayedImportanceClampedToUnitRange(t *testing.T) {
	v := decayedImportance(2.0, 0, 30)
	assert.LessOrEqual(t, v, 1.0)
}
