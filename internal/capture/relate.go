package capture

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

// recentWindow bounds how many timeline entries auto-relate fetches
// candidates from.
const recentWindow = 50

// AutoRelate runs three heuristic strategies against the recentWindow
// most-recent memories and best-effort links memory to whichever
// candidates match. Every storage failure is logged at debug and
// swallowed — auto-relate never fails a save.
func AutoRelate(ctx context.Context, backend storage.Backend, memory *model.Memory, sessionID string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := backend.Timeline(ctx, storage.TimelineQuery{Limit: recentWindow})
	if err != nil {
		logger.Debug("auto_relate: failed to fetch timeline", "error", err)
		return
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.ID != memory.ID {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	candidates, err := backend.GetMemories(ctx, ids)
	if err != nil {
		logger.Debug("auto_relate: failed to fetch candidates", "error", err)
		return
	}

	filePath := ExtractFilePath(memory.Content)

	sessionThread(ctx, backend, memory, sessionID, candidates, logger)

	if filePath != "" {
		sameFileCluster(ctx, backend, memory, filePath, candidates, logger)
	}

	if memory.Kind == model.KindDecision {
		errorFixChain(ctx, backend, memory, filePath, candidates, logger)
	}
}

// sessionThread links the most recent candidate from the same session —
// or, failing that, the most recent auto-captured candidate within the
// first 10 — as related with strength 0.4.
func sessionThread(ctx context.Context, backend storage.Backend, memory *model.Memory, sessionID string, candidates []*model.Memory, logger *slog.Logger) {
	if sessionID == "" {
		return
	}

	var prev *model.Memory
	for _, c := range candidates {
		if c.SessionID != nil && c.SessionID.String() == sessionID {
			prev = c
			break
		}
	}

	if prev == nil {
		for i, c := range candidates {
			if i >= 10 {
				break
			}
			if hasTag(c.Tags, "auto-capture") {
				prev = c
				break
			}
		}
	}

	if prev == nil {
		return
	}

	addRelation(ctx, backend, prev.ID, memory.ID, model.RelationRelated, 0.4, "session_thread", logger)
}

// sameFileCluster links up to 3 recent decision memories whose content
// mentions the same basename as related, strength 0.6.
func sameFileCluster(ctx context.Context, backend storage.Backend, memory *model.Memory, filePath string, candidates []*model.Memory, logger *slog.Logger) {
	filename := basename(filePath)
	linked := 0
	for _, c := range candidates {
		if linked >= 3 {
			break
		}
		if c.Kind != model.KindDecision || c.ID == memory.ID || !strings.Contains(c.Content, filename) {
			continue
		}
		addRelation(ctx, backend, c.ID, memory.ID, model.RelationRelated, 0.6, "same_file_cluster", logger)
		linked++
	}
}

// errorFixChain links memory (a decision) to up to 2 of the 15
// most-recent candidate errors whose title or content mentions the same
// basename, as fixes with strength 0.7. The relation runs from the edit
// to the error it likely resolves.
func errorFixChain(ctx context.Context, backend storage.Backend, memory *model.Memory, filePath string, candidates []*model.Memory, logger *slog.Logger) {
	filename := basename(filePath)
	if filename == "" {
		return
	}

	linked := 0
	for i, c := range candidates {
		if i >= 15 || linked >= 2 {
			break
		}
		if c.Kind != model.KindError || (!strings.Contains(c.Content, filename) && !strings.Contains(c.Title, filename)) {
			continue
		}
		addRelation(ctx, backend, memory.ID, c.ID, model.RelationFixes, 0.7, "error_fix_chain", logger)
		linked++
	}
}

func addRelation(ctx context.Context, backend storage.Backend, sourceID, targetID uuid.UUID, relType model.RelationType, strength float64, strategy string, logger *slog.Logger) {
	rel := model.NewRelation(sourceID, targetID, relType, strength)
	if err := backend.AddRelation(ctx, rel); err != nil {
		logger.Debug("auto_relate: failed to add relation", "strategy", strategy, "error", err)
	}
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

