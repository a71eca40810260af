package hooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxInputSize caps the hook payload read from stdin.
const maxInputSize = 8 << 20

// Output is the JSON a hook writes to stdout.
type Output struct {
	Continue           bool            `json:"continue"`
	StopReason         string          `json:"stopReason,omitempty"`
	SystemMessage      string          `json:"systemMessage,omitempty"`
	Decision           string          `json:"decision,omitempty"`
	Reason             string          `json:"reason,omitempty"`
	HookSpecificOutput *SpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// SpecificOutput carries event-specific fields.
type SpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
}

// ReadInput decodes a hook payload. Empty input yields an empty payload.
func ReadInput(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read hook input: %w", err)
	}
	in := &Input{}
	if len(bytes.TrimSpace(data)) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("failed to decode hook input: %w", err)
	}
	return in, nil
}

// NewOutput converts a dispatch result into the protocol response for event.
func NewOutput(event Event, res Result) Output {
	out := Output{Continue: res.Continue}
	if !res.Continue {
		out.StopReason = res.Reason
	}
	if len(res.Messages) > 0 {
		out.SystemMessage = strings.Join(res.Messages, "\n")
	}

	spec := &SpecificOutput{HookEventName: string(event)}
	used := false

	if res.Block {
		if event == PreToolUse {
			spec.PermissionDecision = "deny"
			spec.PermissionDecisionReason = res.Reason
			used = true
		} else {
			out.Decision = "block"
			out.Reason = res.Reason
		}
	}

	if len(res.AdditionalContext) > 0 && acceptsContext(event) {
		spec.AdditionalContext = strings.Join(res.AdditionalContext, "\n\n")
		used = true
	}
	if used {
		out.HookSpecificOutput = spec
	}
	return out
}

func acceptsContext(e Event) bool {
	return e == SessionStart || e == UserPromptSubmit || e == PostToolUse
}

// WriteOutput encodes the response for event to w.
func WriteOutput(w io.Writer, event Event, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewOutput(event, res)); err != nil {
		return fmt.Errorf("failed to encode hook output: %w", err)
	}
	return nil
}
