// cmd/kaizen-hook is the entry point Claude Code (or any compatible
// coding agent) invokes as a lifecycle hook: one process per hook event,
// reading a single JSON object from stdin and exiting. It classifies the
// event, immediately saves memory-worthy tool failures, buffers
// tool-use/prompt events into the session's scratch file, and on a
// terminal event (Stop/SubagentStop) compresses that buffer into memories.
//
// CRITICAL: this process must never block or fail the host agent. Every
// code path below falls through to os.Exit(0); all diagnostics go to
// stderr exclusively (stdout carries no protocol here, but nothing is
// written to it regardless, to keep the hook's behavior predictable for
// callers that do parse it).
package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/attribution"
	"github.com/kaizen-dev/memento/internal/autotag"
	"github.com/kaizen-dev/memento/internal/capture"
	"github.com/kaizen-dev/memento/internal/config"
	"github.com/kaizen-dev/memento/internal/embedding"
	"github.com/kaizen-dev/memento/internal/history"
	"github.com/kaizen-dev/memento/internal/llm"
	"github.com/kaizen-dev/memento/internal/session"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

// hookTimeout bounds the whole invocation so a wedged embedding/LLM/remote
// call can't hang the host agent indefinitely; spec.md says callers, not
// this process, own timeouts, but a hook binary has no caller to delegate
// to, so it sets one on itself.
const hookTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	run(logger)
	os.Exit(0)
}

func run(logger *slog.Logger) {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Debug("kaizen-hook: failed to read stdin", "error", err)
		return
	}

	var event capture.HookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		logger.Debug("kaizen-hook: malformed event json", "error", err)
		return
	}
	if !event.Valid() {
		logger.Debug("kaizen-hook: missing required fields")
		return
	}

	cfgDir, err := config.Dir()
	if err != nil {
		logger.Debug("kaizen-hook: failed to resolve config dir", "error", err)
		return
	}
	cfg, err := config.Load(config.Path(cfgDir))
	if err != nil {
		logger.Debug("kaizen-hook: failed to load config", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	backend, err := storage.Open(storage.OpenConfig{
		Backend:                 cfg.Storage.Backend,
		DSN:                     cfg.Storage.DSN,
		RemoteAPIKey:            cfg.Storage.RemoteAPIKey,
		RemoteRequestsPerSecond: cfg.Storage.RemoteRequestsPerSecond,
	})
	if err != nil {
		logger.Debug("kaizen-hook: failed to open storage backend", "error", err)
		return
	}
	defer backend.Close()

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		logger.Debug("kaizen-hook: failed to build embedding provider", "error", err)
		return
	}

	gen := llm.NewOllamaClient(llm.OllamaConfig{BaseURL: cfg.LLM.OllamaURL, Model: cfg.LLM.OllamaModel})
	hist := history.New(filepath.Join(cfgDir, "history.jsonl"), cfg.HistoryEnabled, logger)
	bufferPath := session.BufferPath(cfgDir, event.SessionID)

	if isTerminalEvent(event.HookEventName) {
		result := session.Compress(ctx, backend, embedder, session.LLMSummarizer{Gen: gen}, hist, bufferPath, event.SessionID, nil, logger)
		logger.Debug("kaizen-hook: compressed session", "session_id", event.SessionID, "events", result.EventCount, "memories_created", result.MemoriesCreated)
		return
	}

	intent := capture.Classify(event, cfg.Capture)
	switch intent.Kind {
	case capture.IntentSkip:
		logger.Debug("kaizen-hook: skipped event", "reason", intent.Reason)
	case capture.IntentBuffer:
		bufferIntent(bufferPath, intent, logger)
	case capture.IntentSave:
		saveMemory(ctx, backend, embedder, gen, hist, event, intent, logger)
	}
}

// isTerminalEvent reports whether hookEventName ends a session's buffer,
// triggering compression. Stop is the documented case; SubagentStop gets
// the same treatment since a subagent's own buffered work is just as
// worth compressing when its turn ends.
func isTerminalEvent(hookEventName string) bool {
	return hookEventName == "Stop" || hookEventName == "SubagentStop"
}

func bufferIntent(bufferPath string, intent capture.Intent, logger *slog.Logger) {
	event := session.BufferedEvent{
		EventType:  intent.EventType,
		Kind:       intent.MemoryKind,
		Title:      intent.Title,
		Content:    intent.Content,
		Importance: intent.Importance,
		Tags:       intent.Tags,
		FilePath:   intent.FilePath,
		Timestamp:  time.Now().UTC(),
	}
	if err := session.Append(bufferPath, event); err != nil {
		logger.Debug("kaizen-hook: failed to append session buffer", "error", err)
	}
}

func saveMemory(ctx context.Context, backend storage.Backend, embedder embedding.Provider, gen llm.TextGenerator, hist *history.Logger, event capture.HookEvent, intent capture.Intent, logger *slog.Logger) {
	mem := model.New(intent.Title, intent.Content, intent.MemoryKind, attribution.DetectAgent())
	mem.Tags = model.NormalizeTags(intent.Tags)
	mem.Importance = intent.Importance
	mem.Source = model.AutoCaptureSource(event.HookEventName)
	if sid, err := uuid.Parse(event.SessionID); err == nil {
		mem.SessionID = &sid
	}

	var emb *model.Embedding
	if vec, err := embedder.Embed(ctx, mem.Content); err == nil {
		e := model.NewEmbedding(mem.ID, vec)
		emb = &e
	} else {
		logger.Debug("kaizen-hook: failed to embed memory", "error", err)
	}

	if err := backend.SaveMemory(ctx, mem, emb); err != nil {
		logger.Debug("kaizen-hook: failed to save memory", "error", err)
		return
	}
	hist.Log(model.NewMemoryEvent(mem.ID, model.ActionCreated, "hook:"+event.HookEventName).WithTitle(mem.Title))

	if result, err := autotag.Tag(ctx, gen, mem); err == nil && result != nil {
		tags := result.Tags
		importance := result.Importance
		patch := &model.UpdateMemoryInput{Tags: &tags, Importance: &importance}
		if _, err := backend.UpdateMemory(ctx, mem.ID, patch); err != nil {
			logger.Debug("kaizen-hook: failed to apply auto-tag", "error", err)
		}
	}

	capture.AutoRelate(ctx, backend, mem, event.SessionID, logger)
}
