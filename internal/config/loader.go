package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. MOAI_CONTEXT_MAX_ENTRIES.
const EnvPrefix = "MOAI"

// envKeys lists the settings that can be overridden from the environment.
var envKeys = []string{
	"project.name",
	"project.mode",
	"project.language",
	"user.name",
	"language.conversation",
	"context.max_entries",
	"context.max_memory_mb",
	"context.ttl",
	"context.history_size",
	"context.persist",
	"context.budgets.default",
	"skills.dir",
	"skills.builtins",
	"hooks.timeout",
	"hooks.log_events",
	"statusline.color",
	"update.repository",
	"update.timeout",
	"log.level",
}

// LoadOptions locates the configuration layers.
type LoadOptions struct {
	// UserFile overrides the XDG user config path. Empty uses UserConfigPath().
	UserFile string
	// ExplicitFile is an extra config file applied after the project config.
	ExplicitFile string
	// SkipEnv disables MOAI_* environment overrides.
	SkipEnv bool
}

// Load resolves configuration for the project at root. Layers are merged in
// order, later layers overriding non-empty fields of earlier ones: built-in
// defaults, user config, project .moai/config/config.json, the explicit file,
// then environment variables. Missing files are skipped.
func Load(root string, opts LoadOptions) (*Config, error) {
	cfg := Defaults()

	userFile := opts.UserFile
	if userFile == "" {
		userFile = UserConfigPath()
	}

	files := []string{userFile, ProjectConfigPath(root)}
	if opts.ExplicitFile != "" {
		if _, err := os.Stat(opts.ExplicitFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", opts.ExplicitFile, err)
		}
		files = append(files, opts.ExplicitFile)
	}

	for _, path := range files {
		layer, v, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		if err := merge(cfg, layer, v); err != nil {
			return nil, fmt.Errorf("failed to merge config %s: %w", path, err)
		}
	}

	if !opts.SkipEnv {
		layer, v, err := readEnv()
		if err != nil {
			return nil, err
		}
		if err := merge(cfg, layer, v); err != nil {
			return nil, fmt.Errorf("failed to merge environment config: %w", err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

// LoadFile reads a single config file on top of the built-in defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	layer, v, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if layer == nil {
		return nil, fmt.Errorf("config file %s: %w", path, fs.ErrNotExist)
	}
	if err := merge(cfg, layer, v); err != nil {
		return nil, fmt.Errorf("failed to merge config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Save writes cfg to the project config file as indented JSON.
func Save(root string, cfg *Config) error {
	path := ProjectConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// boolKeys are applied from a layer whenever set, since mergo skips false
// values when overriding.
var boolKeys = []struct {
	key   string
	field func(*Config) *bool
}{
	{"context.persist", func(c *Config) *bool { return &c.Context.Persist }},
	{"skills.builtins", func(c *Config) *bool { return &c.Skills.Builtins }},
	{"hooks.log_events", func(c *Config) *bool { return &c.Hooks.LogEvents }},
	{"statusline.color", func(c *Config) *bool { return &c.Statusline.Color }},
}

// merge overlays the non-empty fields of layer onto cfg.
func merge(cfg, layer *Config, v *viper.Viper) error {
	if err := mergo.Merge(cfg, layer, mergo.WithOverride); err != nil {
		return err
	}
	for _, b := range boolKeys {
		if v.IsSet(b.key) {
			*b.field(cfg) = *b.field(layer)
		}
	}
	return nil
}

// readFile unmarshals one config layer. It returns nil for a missing file.
func readFile(path string) (*Config, *viper.Viper, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("config file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	layer := &Config{}
	if err := v.Unmarshal(layer); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return layer, v, nil
}

func readEnv() (*Config, *viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	layer := &Config{}
	if err := v.Unmarshal(layer); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal environment config: %w", err)
	}
	return layer, v, nil
}
