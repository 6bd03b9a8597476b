package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaizen-dev/memento/pkg/model"
)

// DiffUpdate compares old against patch and returns one FieldChange per
// field patch actually changes. Content is summarized as "(<n> chars)"
// on both sides rather than logged verbatim, since history is an audit
// trail, not a backup of memory bodies.
func DiffUpdate(old *model.Memory, patch *model.UpdateMemoryInput) []model.FieldChange {
	var changes []model.FieldChange

	if patch.Title != nil && *patch.Title != old.Title {
		changes = append(changes, model.FieldChange{Field: "title", OldValue: old.Title, NewValue: *patch.Title})
	}
	if patch.Content != nil && *patch.Content != old.Content {
		changes = append(changes, model.FieldChange{
			Field:    "content",
			OldValue: fmt.Sprintf("(%d chars)", len(old.Content)),
			NewValue: fmt.Sprintf("(%d chars)", len(*patch.Content)),
		})
	}
	if patch.Tags != nil {
		oldTags := strings.Join(old.Tags, ", ")
		newTags := strings.Join(*patch.Tags, ", ")
		if oldTags != newTags {
			changes = append(changes, model.FieldChange{Field: "tags", OldValue: oldTags, NewValue: newTags})
		}
	}
	if patch.Importance != nil && *patch.Importance != old.Importance {
		changes = append(changes, model.FieldChange{
			Field:    "importance",
			OldValue: strconv.FormatFloat(old.Importance, 'f', 2, 64),
			NewValue: strconv.FormatFloat(*patch.Importance, 'f', 2, 64),
		})
	}
	if patch.Status != nil && *patch.Status != old.Status {
		changes = append(changes, model.FieldChange{Field: "status", OldValue: string(old.Status), NewValue: string(*patch.Status)})
	}
	if patch.Privacy != nil && *patch.Privacy != old.Privacy {
		changes = append(changes, model.FieldChange{Field: "privacy", OldValue: string(old.Privacy), NewValue: string(*patch.Privacy)})
	}
	if patch.Verification != nil && *patch.Verification != old.Verification {
		changes = append(changes, model.FieldChange{Field: "verification", OldValue: string(old.Verification), NewValue: string(*patch.Verification)})
	}

	return changes
}
