package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/cli/wizard"
	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/scanner"
	"github.com/modu-ai/moai-adk/internal/skills"
	"github.com/modu-ai/moai-adk/internal/template"
	"github.com/modu-ai/moai-adk/internal/version"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize MoAI-ADK in a project",
	Long: `Initialize MoAI-ADK for a project directory (default is the current directory).

This scans the project, writes .moai/config/config.json, installs the project
templates and built-in skills under .claude/, and generates CLAUDE.md.

Re-running init with --force refreshes templates and skills. Files you edited
are backed up to .moai-backups/ before being replaced.

Example:
  moai init
  moai init ./my-app --mode team --language ko --non-interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("name", "", "Project name (default is the directory name)")
	initCmd.Flags().String("description", "", "One-line project description")
	initCmd.Flags().String("mode", "", "Project mode (personal, team)")
	initCmd.Flags().String("language", "", "Conversation language code, e.g. en, ko")
	initCmd.Flags().String("user", "", "Your name, used in generated documents")
	initCmd.Flags().Bool("force", false, "Reinitialize an existing project")
	initCmd.Flags().Bool("non-interactive", false, "Use detected values without prompting")
	initCmd.Flags().Bool("no-skills", false, "Do not install the built-in skills")
}

func initProject(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	dir, err := startDir()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if dir, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(config.ProjectConfigPath(dir)); err == nil && !force {
		return fmt.Errorf("%s is already initialized (use --force to reinitialize)", dir)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check config: %w", err)
	}

	p, err := loadProject(cmd, dir)
	if err != nil {
		return err
	}
	cfg := p.cfg

	fmt.Fprintln(out, "Scanning project...")
	profile, err := scanner.Scan(ctx, dir, scanner.Options{Exclude: cfg.Tags.Exclude})
	if err != nil {
		return fmt.Errorf("failed to scan project: %w", err)
	}

	applyInitFlags(cmd, cfg, profile)

	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
	if !nonInteractive && isInteractive(cmd.InOrStdin()) {
		if err := wizard.ConfirmProject(cfg, profile); err != nil {
			return err
		}
	}

	cfg.MoAI.Version = version.Short()
	cfg.MoAI.TemplateVersion = version.TemplateVersion
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.Save(dir, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", filepath.Join(config.ConfigDir, config.ConfigFile))

	vars := template.MergeVariables(template.ConfigVariables(cfg), template.ProfileVariables(profile))
	res, err := template.Sync(template.Scaffold(), dir, vars, template.SyncOptions{Force: force})
	if err != nil {
		return fmt.Errorf("failed to install templates: %w", err)
	}
	printSyncResult(out, res)

	noSkills, _ := cmd.Flags().GetBool("no-skills")
	if !noSkills {
		installed, err := skills.InstallDefaults(dir, force)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Installed %d skills into %s\n", len(installed), filepath.Join(config.ClaudeDir, "skills"))
	}

	p.logger.Debug("project scanned", "languages", len(profile.Languages), "files", profile.Files, "toolchain", profile.Toolchain.Name)
	changed, err := writeClaudeMD(cmd, p, profile)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintf(out, "Generated %s\n", config.ClaudeMD)
	}

	fmt.Fprintf(out, "\nMoAI-ADK %s initialized %s (%s mode)\n\n", version.Short(), cfg.Project.Name, cfg.Project.Mode)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Review .moai/project/*.md and describe your product")
	fmt.Fprintln(out, "  2. Start Claude Code in this directory")
	fmt.Fprintln(out, "  3. Run 'moai doctor' if hooks do not fire")
	return nil
}

func applyInitFlags(cmd *cobra.Command, cfg *config.Config, profile *scanner.Profile) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("name"); v != "" {
		cfg.Project.Name = v
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = profile.Name
	}
	if v, _ := flags.GetString("description"); v != "" {
		cfg.Project.Description = v
	}
	if v, _ := flags.GetString("mode"); v != "" {
		cfg.Project.Mode = v
	}
	if v, _ := flags.GetString("language"); v != "" {
		cfg.Language.Conversation = v
	}
	if v, _ := flags.GetString("user"); v != "" {
		cfg.User.Name = v
	}
	if lang := profile.PrimaryLanguage(); lang != "" {
		cfg.Project.Language = lang
	}
}

func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func printSyncResult(w io.Writer, res *template.SyncResult) {
	fmt.Fprintf(w, "Templates: %d created, %d updated, %d unchanged, %d skipped\n",
		len(res.Created), len(res.Updated), len(res.Unchanged), len(res.Skipped))
	for _, f := range res.Skipped {
		fmt.Fprintf(w, "  skipped %s (modified locally, use --force to replace)\n", f)
	}
	if res.BackupDir != "" {
		fmt.Fprintf(w, "  backups in %s\n", res.BackupDir)
	}
}
