package config

import (
	"time"

	"github.com/modu-ai/moai-adk/internal/cache"
	"github.com/modu-ai/moai-adk/internal/phase"
)

const (
	defaultHookTimeout   = 5 * time.Second
	defaultUpdateTimeout = 10 * time.Second

	// DefaultRepository is the GitHub repository queried for releases.
	DefaultRepository = "modu-ai/moai-adk"
)

// DefaultProtectedPaths are blocked from tool writes by the pre-tool-use hook.
var DefaultProtectedPaths = []string{
	".env",
	".env.*",
	".git/**",
	"**/*.pem",
	"**/id_rsa*",
	".moai/config/config.json",
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Project: ProjectConfig{
			Mode: "personal",
		},
		Language: LanguageConfig{
			Conversation: "en",
		},
		Context: ContextConfig{
			MaxEntries:  cache.DefaultMaxEntries,
			MaxMemoryMB: int(cache.DefaultMaxBytes >> 20),
			TTL:         "30m",
			HistorySize: phase.DefaultHistorySize,
			Persist:     true,
		},
		Skills: SkillsConfig{
			Dir:      ".claude/skills",
			Builtins: true,
		},
		Tags: TagsConfig{
			Include: []string{"**/*"},
			Exclude: []string{
				".git/**",
				"**/node_modules/**",
				"**/vendor/**",
				".moai-backups/**",
				"**/*.min.js",
			},
		},
		Hooks: HooksConfig{
			Timeout:        defaultHookTimeout.String(),
			ProtectedPaths: append([]string(nil), DefaultProtectedPaths...),
			LogEvents:      true,
		},
		Statusline: StatuslineConfig{
			Color: true,
		},
		Update: UpdateConfig{
			Repository: DefaultRepository,
			Timeout:    defaultUpdateTimeout.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills fields left empty by every config layer.
func applyDefaults(cfg *Config) {
	d := Defaults()

	if cfg.Project.Mode == "" {
		cfg.Project.Mode = d.Project.Mode
	}
	if cfg.Language.Conversation == "" {
		cfg.Language.Conversation = d.Language.Conversation
	}
	if cfg.Context.MaxEntries == 0 {
		cfg.Context.MaxEntries = d.Context.MaxEntries
	}
	if cfg.Context.MaxMemoryMB == 0 {
		cfg.Context.MaxMemoryMB = d.Context.MaxMemoryMB
	}
	if cfg.Context.HistorySize == 0 {
		cfg.Context.HistorySize = d.Context.HistorySize
	}
	if cfg.Skills.Dir == "" {
		cfg.Skills.Dir = d.Skills.Dir
	}
	if len(cfg.Tags.Include) == 0 {
		cfg.Tags.Include = d.Tags.Include
	}
	if cfg.Hooks.Timeout == "" {
		cfg.Hooks.Timeout = d.Hooks.Timeout
	}
	if cfg.Update.Repository == "" {
		cfg.Update.Repository = d.Update.Repository
	}
	if cfg.Update.Timeout == "" {
		cfg.Update.Timeout = d.Update.Timeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}
