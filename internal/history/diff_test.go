package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaizen-dev/memento/pkg/model"
)

func TestDiffUpdateDetectsMultipleChanges(t *testing.T) {
	old := model.New("Old Title", "Old content", model.KindObservation, "user")

	newTitle := "New Title"
	newImportance := 0.9
	patch := &model.UpdateMemoryInput{Title: &newTitle, Importance: &newImportance}

	changes := DiffUpdate(old, patch)
	if assert.Len(t, changes, 2) {
		assert.Equal(t, "title", changes[0].Field)
		assert.Equal(t, "importance", changes[1].Field)
	}
}

func TestDiffUpdateNoChanges(t *testing.T) {
	old := model.New("Same", "Content", model.KindFact, "user")
	same := "Same"
	patch := &model.UpdateMemoryInput{Title: &same}

	assert.Empty(t, DiffUpdate(old, patch))
}

func TestDiffUpdateContentSummarizedAsCharCount(t *testing.T) {
	old := model.New("T", "short", model.KindFact, "user")
	newContent := "a much longer replacement body"
	patch := &model.UpdateMemoryInput{Content: &newContent}

	changes := DiffUpdate(old, patch)
	require := assert.New(t)
	require.Len(changes, 1)
	require.Equal("content", changes[0].Field)
	require.Equal("(5 chars)", changes[0].OldValue)
	require.Equal("(30 chars)", changes[0].NewValue)
}

func TestDiffUpdateStatusChange(t *testing.T) {
	old := model.New("T", "C", model.KindError, "user")
	newStatus := model.StatusArchived
	patch := &model.UpdateMemoryInput{Status: &newStatus}

	changes := DiffUpdate(old, patch)
	if assert.Len(t, changes, 1) {
		assert.Equal(t, "status", changes[0].Field)
		assert.Equal(t, "active", changes[0].OldValue)
		assert.Equal(t, "archived", changes[0].NewValue)
	}
}
