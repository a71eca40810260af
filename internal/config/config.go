// Package config loads and validates MoAI project configuration.
package config

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/modu-ai/moai-adk/internal/budget"
	"github.com/modu-ai/moai-adk/internal/phase"
)

// Config represents the full MoAI configuration
type Config struct {
	MoAI       MoAIConfig       `mapstructure:"moai" json:"moai"`
	Project    ProjectConfig    `mapstructure:"project" json:"project"`
	User       UserConfig       `mapstructure:"user" json:"user"`
	Language   LanguageConfig   `mapstructure:"language" json:"language"`
	Context    ContextConfig    `mapstructure:"context" json:"context"`
	Skills     SkillsConfig     `mapstructure:"skills" json:"skills"`
	Tags       TagsConfig       `mapstructure:"tags" json:"tags"`
	Hooks      HooksConfig      `mapstructure:"hooks" json:"hooks"`
	Statusline StatuslineConfig `mapstructure:"statusline" json:"statusline"`
	Update     UpdateConfig     `mapstructure:"update" json:"update"`
	Log        LogConfig        `mapstructure:"log" json:"log"`
}

// MoAIConfig records which release and template set initialised the project
type MoAIConfig struct {
	Version         string `mapstructure:"version" json:"version"`
	TemplateVersion string `mapstructure:"template_version" json:"template_version"`
}

// ProjectConfig contains project-level settings
type ProjectConfig struct {
	Name        string `mapstructure:"name" json:"name"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	Mode        string `mapstructure:"mode" json:"mode"`         // personal or team
	Language    string `mapstructure:"language" json:"language"` // primary programming language
}

// UserConfig identifies the developer
type UserConfig struct {
	Name string `mapstructure:"name" json:"name,omitempty"`
}

// LanguageConfig controls the conversation language of generated documents
type LanguageConfig struct {
	Conversation string `mapstructure:"conversation" json:"conversation"`
}

// ContextConfig tunes the JIT context loader
type ContextConfig struct {
	MaxEntries  int           `mapstructure:"max_entries" json:"max_entries"`
	MaxMemoryMB int           `mapstructure:"max_memory_mb" json:"max_memory_mb"`
	TTL         string        `mapstructure:"ttl" json:"ttl,omitempty"`
	HistorySize int           `mapstructure:"history_size" json:"history_size"`
	Persist     bool          `mapstructure:"persist" json:"persist"`
	Budgets     BudgetsConfig `mapstructure:"budgets" json:"budgets"`
}

// BudgetsConfig holds per-phase token ceilings keyed by phase name
type BudgetsConfig struct {
	Default   int            `mapstructure:"default" json:"default"`
	Overrides map[string]int `mapstructure:"overrides" json:"overrides,omitempty"`
}

// SkillsConfig locates project skills
type SkillsConfig struct {
	Dir      string `mapstructure:"dir" json:"dir"`
	Builtins bool   `mapstructure:"builtins" json:"builtins"` // fall back to embedded skills when Dir is empty
}

// TagsConfig selects the files scanned for TAGs
type TagsConfig struct {
	Include []string `mapstructure:"include" json:"include"`
	Exclude []string `mapstructure:"exclude" json:"exclude"`
}

// HooksConfig controls hook dispatch
type HooksConfig struct {
	Timeout        string   `mapstructure:"timeout" json:"timeout"`
	ProtectedPaths []string `mapstructure:"protected_paths" json:"protected_paths"`
	LogEvents      bool     `mapstructure:"log_events" json:"log_events"`
}

// StatuslineConfig controls the Claude Code status line
type StatuslineConfig struct {
	Color bool `mapstructure:"color" json:"color"`
}

// UpdateConfig controls release checks
type UpdateConfig struct {
	Repository string `mapstructure:"repository" json:"repository"`
	Timeout    string `mapstructure:"timeout" json:"timeout"`
}

// LogConfig controls CLI logging
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

var validModes = map[string]bool{"personal": true, "team": true}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Project.Mode != "" && !validModes[c.Project.Mode] {
		return fmt.Errorf("invalid project mode: %s (must be personal or team)", c.Project.Mode)
	}

	if c.Context.MaxEntries <= 0 {
		return fmt.Errorf("context.max_entries must be positive")
	}
	if c.Context.MaxMemoryMB <= 0 {
		return fmt.Errorf("context.max_memory_mb must be positive")
	}
	if c.Context.HistorySize <= 0 {
		return fmt.Errorf("context.history_size must be positive")
	}
	if _, err := parseOptionalDuration(c.Context.TTL); err != nil {
		return fmt.Errorf("invalid context.ttl: %w", err)
	}
	if _, err := c.Context.TokenBudgets(); err != nil {
		return err
	}

	if _, err := parseOptionalDuration(c.Hooks.Timeout); err != nil {
		return fmt.Errorf("invalid hooks.timeout: %w", err)
	}
	if _, err := parseOptionalDuration(c.Update.Timeout); err != nil {
		return fmt.Errorf("invalid update.timeout: %w", err)
	}

	for _, p := range append(append([]string{}, c.Tags.Include...), c.Tags.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid tag pattern: %q", p)
		}
	}

	return nil
}

// TokenBudgets converts the configured budgets into typed phase budgets.
func (c ContextConfig) TokenBudgets() (budget.Budgets, error) {
	b := budget.Budgets{Default: c.Budgets.Default}
	if c.Budgets.Default < 0 {
		return b, fmt.Errorf("context.budgets.default must not be negative")
	}
	if len(c.Budgets.Overrides) == 0 {
		return b, nil
	}
	b.Overrides = make(map[phase.Phase]int, len(c.Budgets.Overrides))
	for name, v := range c.Budgets.Overrides {
		p, err := phase.Parse(name)
		if err != nil {
			return b, fmt.Errorf("invalid context.budgets.overrides key: %w", err)
		}
		if v <= 0 {
			return b, fmt.Errorf("context.budgets.overrides.%s must be positive", name)
		}
		b.Overrides[p] = v
	}
	return b, nil
}

// CacheTTL returns the parsed context TTL, zero when unset.
func (c ContextConfig) CacheTTL() time.Duration {
	d, _ := parseOptionalDuration(c.TTL)
	return d
}

// MaxBytes returns the cache memory ceiling in bytes.
func (c ContextConfig) MaxBytes() int64 {
	return int64(c.MaxMemoryMB) << 20
}

// HookTimeout returns the per-handler hook timeout.
func (c HooksConfig) HookTimeout() time.Duration {
	d, _ := parseOptionalDuration(c.Timeout)
	if d <= 0 {
		return defaultHookTimeout
	}
	return d
}

// RequestTimeout returns the HTTP timeout for release checks.
func (c UpdateConfig) RequestTimeout() time.Duration {
	d, _ := parseOptionalDuration(c.Timeout)
	if d <= 0 {
		return defaultUpdateTimeout
	}
	return d
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
