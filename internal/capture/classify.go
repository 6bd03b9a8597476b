package capture

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaizen-dev/memento/pkg/model"
)

// Config tunes the classifier's noise thresholds.
type Config struct {
	// MinPromptLength is the shortest UserPromptSubmit text worth
	// buffering; anything shorter is Skip-ed as noise ("yes", "ok").
	MinPromptLength int
}

// DefaultConfig matches the thresholds exercised by the hook test suite.
func DefaultConfig() Config {
	return Config{MinPromptLength: 10}
}

// trackedTools are the only PostToolUse tool names worth capturing; every
// other tool (Read, Grep, Glob, WebFetch, ...) is read-only and skipped.
var trackedTools = map[string]struct{}{
	"Edit":         {},
	"Write":        {},
	"MultiEdit":    {},
	"NotebookEdit": {},
	"Bash":         {},
}

func isTracked(tool string) bool {
	_, ok := trackedTools[tool]
	return ok
}

// IntentKind tags which variant of Intent a classification produced.
type IntentKind int

const (
	IntentSkip IntentKind = iota
	IntentBuffer
	IntentSave
)

// Intent is the classifier's verdict for one hook event. Only the fields
// relevant to Kind are populated.
type Intent struct {
	Kind IntentKind

	// Skip
	Reason string

	// Buffer and Save
	MemoryKind model.MemoryKind
	Title      string
	Content    string
	Importance float64
	Tags       []string

	// Buffer only
	FilePath  string
	EventType string
}

// Classify maps a hook event to Skip, Buffer, or Save per the rules in
// the capture package doc: untracked tools and short prompts are Skip,
// tracked-tool edits and prompts are Buffer, tool failures are Save
// immediately since an error is worth capturing even if the session
// never reaches a terminal event.
func Classify(e HookEvent, cfg Config) Intent {
	if !e.Valid() {
		return Intent{Kind: IntentSkip, Reason: "missing required fields"}
	}

	switch e.HookEventName {
	case "PostToolUse", "PostToolUseFailure":
		return classifyToolUse(e)
	case "UserPromptSubmit":
		return classifyPrompt(e, cfg)
	default:
		return Intent{Kind: IntentSkip, Reason: "unrecognized hook event: " + e.HookEventName}
	}
}

func classifyToolUse(e HookEvent) Intent {
	if e.ToolName == nil || !isTracked(*e.ToolName) {
		return Intent{Kind: IntentSkip, Reason: "untracked tool"}
	}

	title := fmt.Sprintf("Tool use: %s", *e.ToolName)
	content := fmt.Sprintf("File modified via %s: %s", *e.ToolName, extractFileArg(e.ToolInput))

	if e.Error != nil && *e.Error != "" {
		return Intent{
			Kind:       IntentSave,
			MemoryKind: model.KindError,
			Title:      fmt.Sprintf("Error in %s", *e.ToolName),
			Content:    fmt.Sprintf("Tool `%s` failed:\n\n%s", *e.ToolName, *e.Error),
			Importance: 0.6,
			Tags:       []string{"auto-capture"},
		}
	}

	return Intent{
		Kind:       IntentBuffer,
		MemoryKind: model.KindDecision,
		Title:      title,
		Content:    content,
		Importance: 0.5,
		Tags:       []string{"auto-capture"},
		FilePath:   ExtractFilePath(content),
		EventType:  "edit",
	}
}

func classifyPrompt(e HookEvent, cfg Config) Intent {
	if e.Prompt == nil || len(strings.TrimSpace(*e.Prompt)) < cfg.MinPromptLength {
		return Intent{Kind: IntentSkip, Reason: "short prompt"}
	}

	return Intent{
		Kind:       IntentBuffer,
		MemoryKind: model.KindObservation,
		Title:      "User intent",
		Content:    *e.Prompt,
		Importance: 0.3,
		Tags:       []string{"auto-capture", "intent"},
		EventType:  "intent",
	}
}

// extractFileArg pulls a "file_path" string field out of a tool_input
// JSON object, tolerating absence or malformed input.
func extractFileArg(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var fields struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	return fields.FilePath
}
