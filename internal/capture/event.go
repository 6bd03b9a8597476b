// Package capture turns Claude Code hook events into memories: a
// classifier decides whether an event is noise, worth buffering for
// later session compression, or important enough to save immediately,
// and an auto-relate pass links newly saved memories to recent related
// ones by simple content heuristics.
package capture

import "encoding/json"

// HookEvent is the stdin JSON payload a hook process receives. Fields
// beyond session_id/cwd/hook_event_name vary by event type; callers treat
// every pointer field as optional.
type HookEvent struct {
	SessionID      string          `json:"session_id"`
	Cwd            string          `json:"cwd"`
	HookEventName  string          `json:"hook_event_name"`
	ToolName       *string         `json:"tool_name,omitempty"`
	ToolInput      json.RawMessage `json:"tool_input,omitempty"`
	ToolOutput     *string         `json:"tool_output,omitempty"`
	Error          *string         `json:"error,omitempty"`
	StopHookActive *bool           `json:"stop_hook_active,omitempty"`
	Prompt         *string         `json:"prompt,omitempty"`
}

// Valid reports whether e carries the three fields every classification
// needs. Missing any of them forces a Skip.
func (e HookEvent) Valid() bool {
	return e.SessionID != "" && e.Cwd != "" && e.HookEventName != ""
}
