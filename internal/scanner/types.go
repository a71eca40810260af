// Package scanner inspects a project tree to seed moai init and the generated
// CLAUDE.md: languages by extension counts, toolchain commands, and layout.
package scanner

// Language is one detected programming language.
type Language struct {
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	Files      int      `json:"files"`
	Share      float64  `json:"share"`
	Extensions []string `json:"extensions"`
}

// Toolchain is the detected build system and its usual commands.
type Toolchain struct {
	Name  string   `json:"name,omitempty"`
	Build []string `json:"build,omitempty"`
	Test  []string `json:"test,omitempty"`
	Lint  []string `json:"lint,omitempty"`
}

// Profile is everything Scan learned about a project.
type Profile struct {
	Name       string     `json:"name"`
	Languages  []Language `json:"languages"`
	Toolchain  Toolchain  `json:"toolchain"`
	Framework  string     `json:"framework,omitempty"`
	SourceDirs []string   `json:"source_dirs,omitempty"`
	TestDirs   []string   `json:"test_dirs,omitempty"`
	CI         string     `json:"ci,omitempty"`
	HasGit     bool       `json:"has_git"`
	Files      int        `json:"files"`
	Truncated  bool       `json:"truncated,omitempty"`
}

// PrimaryLanguage returns the most common language name, or "" if none.
func (p *Profile) PrimaryLanguage() string {
	if len(p.Languages) == 0 {
		return ""
	}
	return p.Languages[0].Name
}

// LanguageCode returns the short code of the primary language, e.g. "go".
// It matches the suffix of the moai-lang-* skills.
func (p *Profile) LanguageCode() string {
	if len(p.Languages) == 0 {
		return ""
	}
	return p.Languages[0].Code
}
