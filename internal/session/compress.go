package session

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/embedding"
	"github.com/kaizen-dev/memento/internal/history"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

// Summary is one memory a session's buffered events compress down to.
type Summary struct {
	Title      string
	Content    string
	Kind       model.MemoryKind
	Tags       []string
	Importance float64
}

// Summarizer is the LLM collaborator that turns a session's buffered
// events into one or more summary memories. Summarize may return fewer
// memories than events (it is expected to, that's the point of
// compression); returning an error or an empty slice falls back to the
// heuristic file-path grouping.
type Summarizer interface {
	Summarize(ctx context.Context, sessionID string, events []BufferedEvent) ([]Summary, error)
}

// Result summarizes one compression pass.
type Result struct {
	EventCount      int
	MemoriesCreated int
}

// Compress reads the session buffer at path, turns its events into one or
// more memories (via summarizer, falling back to heuristic grouping by
// file path on summarizer failure or an empty result), saves each with an
// embedding, logs history, and deletes the buffer. The buffer is deleted
// even when compression partially fails: a corrupt or unsummarizable
// buffer must not wedge open forever, and the hook binary that calls this
// always exits 0 regardless of outcome.
func Compress(ctx context.Context, backend storage.Backend, embedder embedding.Provider, summarizer Summarizer, hist *history.Logger, path, sessionID string, projectID *string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if err := DeleteBuffer(path); err != nil {
			logger.Debug("session: failed to delete buffer", "error", err, "session_id", sessionID)
		}
	}()

	events, err := ReadBuffer(path)
	if err != nil {
		logger.Debug("session: failed to read buffer", "error", err, "session_id", sessionID)
		return Result{}
	}
	if len(events) == 0 {
		return Result{}
	}

	summaries, err := summarizeOrFallback(ctx, summarizer, sessionID, events, logger)
	result := Result{EventCount: len(events)}

	var sid *uuid.UUID
	if parsed, err := uuid.Parse(sessionID); err == nil {
		sid = &parsed
	}

	for _, s := range summaries {
		mem := model.New(s.Title, s.Content, s.Kind, "session-compression")
		mem.Tags = model.NormalizeTags(s.Tags)
		mem.Importance = clampImportance(s.Importance)
		mem.Source = model.AutoCaptureSource("session-stop")
		mem.ProjectID = projectID
		if sid != nil {
			mem.SessionID = sid
		}

		var emb *model.Embedding
		if vec, err := embedder.Embed(ctx, mem.Content); err == nil {
			e := model.NewEmbedding(mem.ID, vec)
			emb = &e
		} else {
			logger.Debug("session: failed to embed compressed memory", "error", err)
		}

		if err := backend.SaveMemory(ctx, mem, emb); err != nil {
			logger.Debug("session: failed to save compressed memory", "error", err)
			continue
		}
		if hist != nil {
			hist.Log(model.NewMemoryEvent(mem.ID, model.ActionCreated, "session-compression").WithTitle(mem.Title))
		}
		result.MemoriesCreated++
	}

	return result
}

func summarizeOrFallback(ctx context.Context, summarizer Summarizer, sessionID string, events []BufferedEvent, logger *slog.Logger) ([]Summary, error) {
	if summarizer != nil {
		summaries, err := summarizer.Summarize(ctx, sessionID, events)
		if err == nil && len(summaries) > 0 {
			return summaries, nil
		}
		if err != nil {
			logger.Debug("session: summarizer failed, falling back to heuristic grouping", "error", err, "session_id", sessionID)
		}
	}
	return heuristicGroup(events), nil
}

// heuristicGroup groups buffered events by file path (events with no file
// path share one "session notes" bucket) and produces one summary per
// group, concatenating content and taking the max importance observed.
func heuristicGroup(events []BufferedEvent) []Summary {
	type group struct {
		filePath   string
		contents   []string
		tags       map[string]struct{}
		importance float64
		kind       model.MemoryKind
		order      int
	}

	groups := make(map[string]*group)
	var order []string
	for i, e := range events {
		key := e.FilePath
		g, ok := groups[key]
		if !ok {
			g = &group{filePath: key, tags: map[string]struct{}{}, kind: e.Kind, order: i}
			groups[key] = g
			order = append(order, key)
		}
		g.contents = append(g.contents, e.Content)
		for _, t := range e.Tags {
			g.tags[t] = struct{}{}
		}
		if e.Importance > g.importance {
			g.importance = e.Importance
		}
		if e.Kind == model.KindError {
			g.kind = model.KindError
		}
	}

	sort.Slice(order, func(i, j int) bool { return groups[order[i]].order < groups[order[j]].order })

	summaries := make([]Summary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		title := "Session notes"
		if g.filePath != "" {
			title = fmt.Sprintf("Session work: %s", path.Base(g.filePath))
		}
		tags := make([]string, 0, len(g.tags)+1)
		tags = append(tags, "auto-capture", "session-compressed")
		for t := range g.tags {
			tags = append(tags, t)
		}
		summaries = append(summaries, Summary{
			Title:      title,
			Content:    strings.Join(g.contents, "\n\n"),
			Kind:       g.kind,
			Tags:       tags,
			Importance: g.importance,
		})
	}
	return summaries
}

func clampImportance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
