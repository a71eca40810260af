// Package skills indexes Markdown skill documents and selects them per workflow phase.
package skills

import "github.com/modu-ai/moai-adk/internal/phase"

// DefaultPriority applies to skills whose frontmatter omits a priority.
const DefaultPriority = 100

// Frontmatter is the YAML header of a skill file.
type Frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Categories  []string `yaml:"categories"`
	Phases      []string `yaml:"phases"`
	Priority    int      `yaml:"priority"`
}

// SkillInfo is an indexed skill. It is immutable once the index is built.
type SkillInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Path        string        `json:"path"`
	Size        int64         `json:"size"`
	Tokens      int           `json:"tokens"`
	Categories  []string      `json:"categories,omitempty"`
	Phases      []phase.Phase `json:"phases,omitempty"`
	Priority    int           `json:"priority"`
	Content     string        `json:"-"`
}

// Universal reports whether the skill applies to every phase.
func (s SkillInfo) Universal() bool {
	return len(s.Phases) == 0 && len(s.Categories) == 0
}

// HasPhase reports whether p is listed explicitly in the skill's phases.
func (s SkillInfo) HasPhase(p phase.Phase) bool {
	for _, sp := range s.Phases {
		if sp == p {
			return true
		}
	}
	return false
}
