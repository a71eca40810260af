package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/logging"
	"github.com/modu-ai/moai-adk/internal/skills"
)

// project is a resolved MoAI project: its root, merged config and a logger.
type project struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
}

// startDir returns --dir or the working directory, made absolute.
func startDir() (string, error) {
	if workDir != "" {
		return filepath.Abs(workDir)
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return dir, nil
}

// openProject finds the project root above the start directory and loads its
// configuration.
func openProject(cmd *cobra.Command) (*project, error) {
	dir, err := startDir()
	if err != nil {
		return nil, err
	}
	return loadProject(cmd, config.FindProjectRoot(dir))
}

func loadProject(cmd *cobra.Command, root string) (*project, error) {
	cfg, err := config.Load(root, config.LoadOptions{ExplicitFile: cfgFile})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &project{root: root, cfg: cfg, logger: newLogger(cmd, cfg)}, nil
}

// requireProject is openProject for commands that need an initialised project.
func requireProject(cmd *cobra.Command) (*project, error) {
	p, err := openProject(cmd)
	if err != nil {
		return nil, err
	}
	if !config.IsProject(p.root) {
		return nil, fmt.Errorf("%s is not a MoAI project. Run 'moai init' first", p.root)
	}
	return p, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		level = logging.ParseLevel(cfg.Log.Level)
	}
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return logging.New(logging.Options{
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
		NoColor: viper.GetBool("no_color"),
	})
}

// colorEnabled reports whether output to w may carry ANSI colors.
func colorEnabled(w io.Writer) bool {
	if viper.GetBool("no_color") || color.NoColor {
		return false
	}
	return w == os.Stdout
}

// skillsDir resolves the configured skills directory against root.
func (p *project) skillsDir() string {
	if filepath.IsAbs(p.cfg.Skills.Dir) {
		return p.cfg.Skills.Dir
	}
	return filepath.Join(p.root, p.cfg.Skills.Dir)
}

func (p *project) openSkills(ctx context.Context) (*skills.Index, error) {
	ix, err := skills.OpenProject(ctx, p.skillsDir(), p.cfg.Skills.Builtins, p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to index skills: %w", err)
	}
	return ix, nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}
