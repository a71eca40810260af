package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modu-ai/moai-adk/internal/phase"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "team mode",
			mutate:  func(c *Config) { c.Project.Mode = "team" },
			wantErr: false,
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Project.Mode = "solo" },
			wantErr: true,
			errMsg:  "invalid project mode",
		},
		{
			name:    "zero max entries",
			mutate:  func(c *Config) { c.Context.MaxEntries = 0 },
			wantErr: true,
			errMsg:  "context.max_entries",
		},
		{
			name:    "negative memory",
			mutate:  func(c *Config) { c.Context.MaxMemoryMB = -1 },
			wantErr: true,
			errMsg:  "context.max_memory_mb",
		},
		{
			name:    "zero history",
			mutate:  func(c *Config) { c.Context.HistorySize = 0 },
			wantErr: true,
			errMsg:  "context.history_size",
		},
		{
			name:    "bad ttl",
			mutate:  func(c *Config) { c.Context.TTL = "soon" },
			wantErr: true,
			errMsg:  "invalid context.ttl",
		},
		{
			name:    "bad hook timeout",
			mutate:  func(c *Config) { c.Hooks.Timeout = "5 seconds" },
			wantErr: true,
			errMsg:  "invalid hooks.timeout",
		},
		{
			name:    "bad update timeout",
			mutate:  func(c *Config) { c.Update.Timeout = "x" },
			wantErr: true,
			errMsg:  "invalid update.timeout",
		},
		{
			name: "unknown budget phase",
			mutate: func(c *Config) {
				c.Context.Budgets.Overrides = map[string]int{"review": 1000}
			},
			wantErr: true,
			errMsg:  "context.budgets.overrides",
		},
		{
			name: "non-positive budget override",
			mutate: func(c *Config) {
				c.Context.Budgets.Overrides = map[string]int{"red": 0}
			},
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name:    "negative default budget",
			mutate:  func(c *Config) { c.Context.Budgets.Default = -5 },
			wantErr: true,
			errMsg:  "must not be negative",
		},
		{
			name:    "bad tag pattern",
			mutate:  func(c *Config) { c.Tags.Exclude = []string{"src/[a-"} },
			wantErr: true,
			errMsg:  "invalid tag pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error, got nil")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestContextConfig_TokenBudgets(t *testing.T) {
	c := ContextConfig{Budgets: BudgetsConfig{
		Default:   12000,
		Overrides: map[string]int{"red": 5000, "SYNC": 9000},
	}}
	b, err := c.TokenBudgets()
	if err != nil {
		t.Fatalf("TokenBudgets() error: %v", err)
	}
	if b.Default != 12000 {
		t.Errorf("Default = %d, want 12000", b.Default)
	}
	if b.Overrides[phase.Red] != 5000 {
		t.Errorf("Overrides[RED] = %d, want 5000", b.Overrides[phase.Red])
	}
	if b.Overrides[phase.Sync] != 9000 {
		t.Errorf("Overrides[SYNC] = %d, want 9000", b.Overrides[phase.Sync])
	}
}

func TestDurations(t *testing.T) {
	var h HooksConfig
	if got := h.HookTimeout(); got != defaultHookTimeout {
		t.Errorf("HookTimeout() = %v, want %v", got, defaultHookTimeout)
	}
	h.Timeout = "250ms"
	if got := h.HookTimeout(); got != 250*time.Millisecond {
		t.Errorf("HookTimeout() = %v, want 250ms", got)
	}

	var u UpdateConfig
	if got := u.RequestTimeout(); got != defaultUpdateTimeout {
		t.Errorf("RequestTimeout() = %v, want %v", got, defaultUpdateTimeout)
	}

	c := ContextConfig{TTL: "1h", MaxMemoryMB: 2}
	if got := c.CacheTTL(); got != time.Hour {
		t.Errorf("CacheTTL() = %v, want 1h", got)
	}
	if got := c.MaxBytes(); got != 2<<20 {
		t.Errorf("MaxBytes() = %d, want %d", got, 2<<20)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root, LoadOptions{UserFile: filepath.Join(root, "none.yaml"), SkipEnv: true})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Project.Mode != "personal" {
		t.Errorf("Project.Mode = %q, want personal", cfg.Project.Mode)
	}
	if !cfg.Skills.Builtins {
		t.Error("Skills.Builtins should default to true")
	}
	if cfg.Context.MaxEntries != 50 {
		t.Errorf("Context.MaxEntries = %d, want 50", cfg.Context.MaxEntries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoad_Layers(t *testing.T) {
	root := t.TempDir()
	userFile := filepath.Join(root, "home", "config.yaml")
	writeFile(t, userFile, `
user:
  name: goos
language:
  conversation: ko
log:
  level: debug
`)
	writeFile(t, ProjectConfigPath(root), `{
  "project": {"name": "demo", "mode": "team"},
  "language": {"conversation": "en"},
  "skills": {"builtins": false},
  "context": {"max_entries": 12, "budgets": {"overrides": {"RED": 4000}}}
}`)
	explicit := filepath.Join(root, "ci.yaml")
	writeFile(t, explicit, `
log:
  level: warn
`)

	cfg, err := Load(root, LoadOptions{UserFile: userFile, ExplicitFile: explicit, SkipEnv: true})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.User.Name != "goos" {
		t.Errorf("User.Name = %q, want goos", cfg.User.Name)
	}
	if cfg.Language.Conversation != "en" {
		t.Errorf("Language.Conversation = %q, want en (project overrides user)", cfg.Language.Conversation)
	}
	if cfg.Project.Name != "demo" || cfg.Project.Mode != "team" {
		t.Errorf("Project = %+v", cfg.Project)
	}
	if cfg.Skills.Builtins {
		t.Error("Skills.Builtins = true, want false from project layer")
	}
	if cfg.Skills.Dir != ".claude/skills" {
		t.Errorf("Skills.Dir = %q, want default", cfg.Skills.Dir)
	}
	if cfg.Context.MaxEntries != 12 {
		t.Errorf("Context.MaxEntries = %d, want 12", cfg.Context.MaxEntries)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn from explicit file", cfg.Log.Level)
	}

	b, err := cfg.Context.TokenBudgets()
	if err != nil {
		t.Fatalf("TokenBudgets() error: %v", err)
	}
	if b.For(phase.Red) != 4000 {
		t.Errorf("budget RED = %d, want 4000", b.For(phase.Red))
	}
}

func TestLoad_Env(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MOAI_CONTEXT_MAX_ENTRIES", "7")
	t.Setenv("MOAI_STATUSLINE_COLOR", "false")
	t.Setenv("MOAI_LOG_LEVEL", "error")

	cfg, err := Load(root, LoadOptions{UserFile: filepath.Join(root, "none.yaml")})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Context.MaxEntries != 7 {
		t.Errorf("Context.MaxEntries = %d, want 7", cfg.Context.MaxEntries)
	}
	if cfg.Statusline.Color {
		t.Error("Statusline.Color = true, want false from env")
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, LoadOptions{
		UserFile:     filepath.Join(root, "none.yaml"),
		ExplicitFile: filepath.Join(root, "missing.yaml"),
		SkipEnv:      true,
	})
	if err == nil {
		t.Fatal("Load() expected error for missing explicit file")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	root := t.TempDir()
	cfg := Defaults()
	cfg.Project.Name = "roundtrip"
	cfg.Context.Budgets.Overrides = map[string]int{"GREEN": 1234}

	if err := Save(root, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := LoadFile(ProjectConfigPath(root))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got.Project.Name != "roundtrip" {
		t.Errorf("Project.Name = %q, want roundtrip", got.Project.Name)
	}
	b, err := got.Context.TokenBudgets()
	if err != nil {
		t.Fatalf("TokenBudgets() error: %v", err)
	}
	if b.For(phase.Green) != 1234 {
		t.Errorf("budget GREEN = %d, want 1234", b.For(phase.Green))
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, MoaiDir), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got := FindProjectRoot(nested)
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
	if !IsProject(root) {
		t.Error("IsProject(root) = false")
	}
}
