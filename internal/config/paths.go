package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Directory and file names inside a MoAI project.
const (
	MoaiDir        = ".moai"
	ConfigDir      = ".moai/config"
	ConfigFile     = "config.json"
	CacheDir       = ".moai/cache"
	LogsDir        = ".moai/logs"
	SpecsDir       = ".moai/specs"
	ProjectDocsDir = ".moai/project"
	BackupsDir     = ".moai-backups"

	ClaudeDir    = ".claude"
	SettingsJSON = "settings.json"
	ClaudeMD     = "CLAUDE.md"

	userConfigName = "config.yaml"
)

// ProjectConfigPath returns the project config file for root.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(ConfigDir), ConfigFile)
}

// UserConfigPath returns the per-user config file under the XDG config home.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "moai", userConfigName)
}

// IsProject reports whether root contains a .moai directory.
func IsProject(root string) bool {
	info, err := os.Stat(filepath.Join(root, MoaiDir))
	return err == nil && info.IsDir()
}

// FindProjectRoot walks up from start looking for a .moai directory. It returns
// start unchanged when none is found.
func FindProjectRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	dir := abs
	for {
		if IsProject(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}
