// Package history implements the append-only audit trail of memory
// mutations: a JSONL file at a fixed path, written best-effort so that
// logging failures never interrupt the operation being recorded.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/pkg/model"
)

// Logger appends MemoryEvent records to a JSONL file. Logging is
// best-effort: serialization or I/O failures are logged at debug and
// never propagated, matching the teacher's swallow-and-log style for
// non-critical-path writers.
type Logger struct {
	path    string
	enabled bool
	logger  *slog.Logger
}

// New constructs a Logger writing to path. Disabled loggers accept Log
// calls as no-ops, so callers never need to branch on configuration.
func New(path string, enabled bool, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{path: path, enabled: enabled, logger: logger}
}

// Log appends event as one JSON line. Failures are swallowed with a
// debug log.
func (l *Logger) Log(event *model.MemoryEvent) {
	if !l.enabled {
		return
	}
	if err := l.append(event); err != nil {
		l.logger.Debug("history: failed to log event", "error", err, "memory_id", event.MemoryID)
	}
}

func (l *Logger) append(event *model.MemoryEvent) error {
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	return nil
}

// HistoryFor returns every event for memoryID, most recent first.
func (l *Logger) HistoryFor(memoryID uuid.UUID) []model.MemoryEvent {
	events := l.readAll()
	filtered := events[:0]
	for _, e := range events {
		if e.MemoryID == memoryID {
			filtered = append(filtered, e)
		}
	}
	reverse(filtered)
	return filtered
}

// Recent returns the limit most recent events across all memories, most
// recent first.
func (l *Logger) Recent(limit int) []model.MemoryEvent {
	events := l.readAll()
	reverse(events)
	if limit >= 0 && limit < len(events) {
		events = events[:limit]
	}
	return events
}

func (l *Logger) readAll() []model.MemoryEvent {
	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var events []model.MemoryEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e model.MemoryEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events
}

func reverse(events []model.MemoryEvent) {
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
}
