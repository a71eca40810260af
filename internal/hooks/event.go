// Package hooks implements the Claude Code hook protocol: it decodes the hook
// payload, runs the registered handlers for the event and encodes their
// combined decision.
package hooks

import (
	"fmt"
	"strings"
)

// Event is a Claude Code hook event name.
type Event string

const (
	SessionStart     Event = "SessionStart"
	UserPromptSubmit Event = "UserPromptSubmit"
	PreToolUse       Event = "PreToolUse"
	PostToolUse      Event = "PostToolUse"
	SessionEnd       Event = "SessionEnd"
)

// Events lists the supported events in lifecycle order.
func Events() []Event {
	return []Event{SessionStart, UserPromptSubmit, PreToolUse, PostToolUse, SessionEnd}
}

// CLIName returns the kebab-case form used on the command line, e.g. "pre-tool-use".
func (e Event) CLIName() string {
	var b strings.Builder
	for i, r := range string(e) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseEvent accepts either the protocol name ("PreToolUse") or the CLI name
// ("pre-tool-use"), case-insensitively.
func ParseEvent(s string) (Event, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s))
	for _, e := range Events() {
		if strings.ToLower(string(e)) == norm {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown hook event %q", s)
}

// Input is the JSON payload Claude Code writes to a hook's stdin. Fields not
// used by an event are empty.
type Input struct {
	SessionID      string         `json:"session_id"`
	TranscriptPath string         `json:"transcript_path,omitempty"`
	Cwd            string         `json:"cwd,omitempty"`
	HookEventName  string         `json:"hook_event_name,omitempty"`
	Source         string         `json:"source,omitempty"`
	Prompt         string         `json:"prompt,omitempty"`
	ToolName       string         `json:"tool_name,omitempty"`
	ToolInput      map[string]any `json:"tool_input,omitempty"`
	ToolResponse   map[string]any `json:"tool_response,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

// FilePath returns the file a tool call targets, if any.
func (in *Input) FilePath() string {
	for _, key := range []string{"file_path", "notebook_path", "path"} {
		if s, ok := in.ToolInput[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Result is what a handler, or a whole dispatch, decides.
type Result struct {
	// Continue false asks Claude Code to stop the session.
	Continue bool `json:"continue"`
	// Block rejects the current prompt or tool call with Reason.
	Block             bool     `json:"block,omitempty"`
	Reason            string   `json:"reason,omitempty"`
	Messages          []string `json:"messages,omitempty"`
	AdditionalContext []string `json:"additional_context,omitempty"`
}

// Pass is the neutral result.
func Pass() Result {
	return Result{Continue: true}
}

// Deny blocks the current prompt or tool call.
func Deny(reason string) Result {
	return Result{Continue: true, Block: true, Reason: reason}
}

// merge folds r into the accumulated result.
func (acc *Result) merge(r Result) {
	acc.Continue = acc.Continue && r.Continue
	if r.Block {
		acc.Block = true
		acc.Reason = r.Reason
	}
	acc.Messages = append(acc.Messages, r.Messages...)
	acc.AdditionalContext = append(acc.AdditionalContext, r.AdditionalContext...)
}
