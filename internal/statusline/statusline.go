// Package statusline renders the one-line Claude Code status bar.
package statusline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	icon      = "🗿"
	separator = " | "
)

// Input is the session JSON Claude Code pipes to the status line command.
type Input struct {
	SessionID string `json:"session_id,omitempty"`
	Cwd       string `json:"cwd,omitempty"`
	Model     struct {
		ID          string `json:"id,omitempty"`
		DisplayName string `json:"display_name,omitempty"`
	} `json:"model"`
	Workspace struct {
		CurrentDir string `json:"current_dir,omitempty"`
		ProjectDir string `json:"project_dir,omitempty"`
	} `json:"workspace"`
	OutputStyle struct {
		Name string `json:"name,omitempty"`
	} `json:"output_style"`
}

// Dir returns the directory the session is working in.
func (in *Input) Dir() string {
	if in.Workspace.CurrentDir != "" {
		return in.Workspace.CurrentDir
	}
	return in.Cwd
}

// ReadInput decodes the session JSON. Empty or malformed input yields an empty
// Input so the status line still renders.
func ReadInput(r io.Reader) *Input {
	in := &Input{}
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return in
	}
	if err := json.Unmarshal(data, in); err != nil {
		return &Input{}
	}
	return in
}

// Line holds the status line segments. Empty segments are omitted.
type Line struct {
	Model   string
	Version string
	Branch  string
	Style   string
	Update  string
}

// Build fills a Line from the session input. branch resolves the git branch
// of a directory; its errors leave the segment empty.
func Build(in *Input, moaiVersion string, branch func(dir string) (string, error)) Line {
	l := Line{
		Model:   in.Model.DisplayName,
		Version: moaiVersion,
		Style:   in.OutputStyle.Name,
	}
	if l.Model == "" {
		l.Model = in.Model.ID
	}
	if dir := in.Dir(); dir != "" && branch != nil {
		if b, err := branch(dir); err == nil {
			l.Branch = b
		}
	}
	return l
}

// Render formats the line as "🗿 <model> | <version> | <branch> | <style>".
func (l Line) Render(colored bool) string {
	paint := func(attr color.Attribute, s string) string {
		if !colored {
			return s
		}
		c := color.New(attr)
		c.EnableColor()
		return c.Sprint(s)
	}

	var parts []string
	if l.Model != "" {
		parts = append(parts, paint(color.FgCyan, l.Model))
	}
	if l.Version != "" {
		v := l.Version
		if l.Update != "" {
			v = fmt.Sprintf("%s → %s", v, l.Update)
		}
		parts = append(parts, paint(color.FgMagenta, v))
	}
	if l.Branch != "" {
		parts = append(parts, paint(color.FgGreen, l.Branch))
	}
	if l.Style != "" && !strings.EqualFold(l.Style, "default") {
		parts = append(parts, paint(color.FgYellow, l.Style))
	}
	if len(parts) == 0 {
		return icon
	}
	return icon + " " + strings.Join(parts, separator)
}
