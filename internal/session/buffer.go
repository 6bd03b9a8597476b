// Package session implements the per-session JSONL scratch buffer and its
// compression into durable memories. Hook events for tracked tools and
// prompts accumulate here instead of being saved immediately; a terminal
// hook event (Stop) triggers a read-compress-delete pass.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kaizen-dev/memento/pkg/model"
)

// BufferedEvent is one line of a session's scratch file: the fields a
// classifier's Buffer verdict carries, plus the time it was appended.
type BufferedEvent struct {
	EventType  string          `json:"event_type"`
	Kind       model.MemoryKind `json:"kind"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Importance float64         `json:"importance"`
	Tags       []string        `json:"tags,omitempty"`
	FilePath   string          `json:"file_path,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// BufferPath returns the well-known scratch-file path for sessionID under
// baseDir (the "sessions" subdirectory of the kaizen config directory, per
// the persisted-layout section: sessions/<session_id>.jsonl).
func BufferPath(baseDir, sessionID string) string {
	return filepath.Join(baseDir, "sessions", sessionID+".jsonl")
}

// Append adds one buffered event as a JSON line. There is no long-lived
// handle: every call opens, appends, and closes, tolerating interleaved
// writers racing on the same file (writes are full-line appends).
func Append(path string, event BufferedEvent) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("session: mkdir %s: %w", dir, err)
		}
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("session: marshal event: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("session: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("session: write %s: %w", path, err)
	}
	return nil
}

// ReadBuffer reads every buffered event from path in append order,
// tolerating and skipping malformed lines. A missing file reads as empty,
// not an error: a session that never buffered anything has no file.
func ReadBuffer(path string) ([]BufferedEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	defer f.Close()

	var events []BufferedEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e BufferedEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// DeleteBuffer removes the scratch file. Absence is not an error.
func DeleteBuffer(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove %s: %w", path, err)
	}
	return nil
}
