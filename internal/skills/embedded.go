package skills

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed defaults/*/SKILL.md
var embeddedSkills embed.FS

// DefaultsFS returns the built-in skills as a file tree of <name>/SKILL.md.
func DefaultsFS() fs.FS {
	sub, err := fs.Sub(embeddedSkills, "defaults")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// DefaultSkillNames lists the built-in skills.
func DefaultSkillNames() []string {
	entries, _ := fs.ReadDir(DefaultsFS(), ".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// OpenDefaults indexes the built-in skills.
func OpenDefaults(ctx context.Context, logger *slog.Logger) (*Index, error) {
	return NewIndex(ctx, DefaultsFS(), "builtin", logger)
}

// OpenProject indexes the skills under dir. When dir holds none and builtins
// is set, the built-in set is indexed instead.
func OpenProject(ctx context.Context, dir string, builtins bool, logger *slog.Logger) (*Index, error) {
	ix, err := OpenDir(ctx, dir, logger)
	if err != nil {
		return nil, err
	}
	if ix.Len() > 0 || !builtins {
		return ix, nil
	}
	if logger != nil {
		logger.Debug("no project skills found, using built-in set", "dir", dir)
	}
	return OpenDefaults(ctx, logger)
}

// InstallDefaults writes the built-in skills to <rootDir>/.claude/skills/.
// Existing skills are left alone unless force is set. It returns the names written.
func InstallDefaults(rootDir string, force bool) ([]string, error) {
	var installed []string
	for _, name := range DefaultSkillNames() {
		wrote, err := installSkill(rootDir, name, force)
		if err != nil {
			return installed, fmt.Errorf("failed to install skill %s: %w", name, err)
		}
		if wrote {
			installed = append(installed, name)
		}
	}
	return installed, nil
}

// ProjectDir returns the project-local skills directory.
func ProjectDir(rootDir string) string {
	return filepath.Join(rootDir, ".claude", "skills")
}

func installSkill(rootDir, skillName string, force bool) (bool, error) {
	skillsDir := filepath.Join(ProjectDir(rootDir), skillName)
	skillPath := filepath.Join(skillsDir, SkillFile)

	if _, err := os.Stat(skillPath); err == nil && !force {
		return false, nil
	}

	content, err := fs.ReadFile(DefaultsFS(), path.Join(skillName, SkillFile))
	if err != nil {
		return false, fmt.Errorf("failed to read embedded skill: %w", err)
	}

	if err := os.MkdirAll(skillsDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create skills directory: %w", err)
	}

	if err := os.WriteFile(skillPath, content, 0644); err != nil {
		return false, fmt.Errorf("failed to write skill file: %w", err)
	}

	return true, nil
}
