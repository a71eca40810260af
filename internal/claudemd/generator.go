// Package claudemd generates the MoAI section of a project's CLAUDE.md while
// preserving everything the user wrote around it.
package claudemd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/scanner"
	"github.com/modu-ai/moai-adk/internal/skills"
	"github.com/modu-ai/moai-adk/internal/version"
)

// Markers delimiting the regenerated block.
const (
	StartMarker = "<!-- moai:generated:start -->"
	EndMarker   = "<!-- moai:generated:end -->"
)

// Data feeds the CLAUDE.md template.
type Data struct {
	Name         string
	Version      string
	Mode         string
	Conversation string
	Profile      *scanner.Profile
	Skills       []skills.SkillInfo
	Protected    []string
}

// NewData assembles template data from configuration, an optional scan
// profile and the indexed skills.
func NewData(cfg *config.Config, profile *scanner.Profile, list []skills.SkillInfo) Data {
	name := cfg.Project.Name
	if name == "" && profile != nil {
		name = profile.Name
	}
	return Data{
		Name:         name,
		Version:      version.Short(),
		Mode:         cfg.Project.Mode,
		Conversation: cfg.Language.Conversation,
		Profile:      profile,
		Skills:       list,
		Protected:    cfg.Hooks.ProtectedPaths,
	}
}

// Generator renders the generated CLAUDE.md block.
type Generator struct {
	tmpl *template.Template
}

// NewGenerator parses the built-in template.
func NewGenerator() (*Generator, error) {
	tmpl, err := template.New("claudemd").Funcs(template.FuncMap{
		"phases": phaseList,
	}).Parse(claudeMDTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Generate renders the block, markers included.
func (g *Generator) Generate(d Data) (string, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Merge replaces the generated block in existing with block. Content outside
// the markers is kept. Existing content without markers is kept below the
// block. An empty existing file gets the default custom section.
func Merge(existing, block string) string {
	if strings.TrimSpace(existing) == "" {
		return block + defaultCustomSection
	}
	s := Split(existing)
	if !s.HasMarkers {
		return block + "\n" + existing
	}
	return s.Before + strings.TrimSuffix(block, "\n") + s.After
}

// Write renders d into root/CLAUDE.md and reports whether the file changed.
func (g *Generator) Write(root string, d Data) (bool, error) {
	block, err := g.Generate(d)
	if err != nil {
		return false, err
	}

	path := filepath.Join(root, config.ClaudeMD)
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", config.ClaudeMD, err)
	}

	content := Merge(string(existing), block)
	if content == string(existing) {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", config.ClaudeMD, err)
	}
	return true, nil
}

func phaseList(s skills.SkillInfo) string {
	if s.Universal() {
		return "all"
	}
	if len(s.Phases) == 0 {
		return "by category"
	}
	names := make([]string, len(s.Phases))
	for i, p := range s.Phases {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
