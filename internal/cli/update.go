package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/scanner"
	"github.com/modu-ai/moai-adk/internal/template"
	"github.com/modu-ai/moai-adk/internal/updater"
	"github.com/modu-ai/moai-adk/internal/version"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a new release and sync project templates",
	Long: `Check GitHub for a newer moai release and re-sync the project templates
shipped with this binary.

Template files you have edited are skipped unless --force is given, in which
case they are backed up to .moai-backups/ first. Without --check or --sync both
steps run.

Example:
  moai update --check
  moai update --sync --dry-run`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().Bool("check", false, "Only check for a newer release")
	updateCmd.Flags().Bool("sync", false, "Only sync project templates")
	updateCmd.Flags().Bool("force", false, "Replace locally modified templates (after backup)")
	updateCmd.Flags().Bool("dry-run", false, "Show what sync would change without writing")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")
	sync, _ := cmd.Flags().GetBool("sync")
	if !check && !sync {
		check, sync = true, true
	}

	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if check {
		client := updater.NewClient(p.cfg.Update.Repository, p.cfg.Update.RequestTimeout())
		res := updater.NewChecker(client, updater.CachePath(p.root)).Check(cmd.Context(), version.Short())
		switch {
		case res.Error != "":
			fmt.Fprintf(out, "Update check failed: %s\n", res.Error)
		case res.UpdateAvailable:
			fmt.Fprintf(out, "moai %s is available (current %s)\n  %s\n", res.Latest, res.Current, res.ReleaseURL)
		default:
			fmt.Fprintf(out, "moai %s is up to date\n", res.Current)
		}
	}

	if !sync {
		return nil
	}
	if !config.IsProject(p.root) {
		return fmt.Errorf("%s is not a MoAI project. Run 'moai init' first", p.root)
	}

	profile, err := scanner.Scan(cmd.Context(), p.root, scanner.Options{Exclude: p.cfg.Tags.Exclude})
	if err != nil {
		return fmt.Errorf("failed to scan project: %w", err)
	}
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	vars := template.MergeVariables(template.ConfigVariables(p.cfg), template.ProfileVariables(profile))
	res, err := template.Sync(template.Scaffold(), p.root, vars, template.SyncOptions{Force: force, DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("failed to sync templates: %w", err)
	}
	if dryRun {
		fmt.Fprintln(out, "Dry run, nothing written.")
	}
	printSyncResult(out, res)

	if dryRun || p.cfg.MoAI.TemplateVersion == version.TemplateVersion {
		return nil
	}
	// Rewrite only the project layer so user and env overrides stay out of it.
	projCfg, err := config.LoadFile(config.ProjectConfigPath(p.root))
	if err != nil {
		return err
	}
	projCfg.MoAI.TemplateVersion = version.TemplateVersion
	projCfg.MoAI.Version = version.Short()
	if err := config.Save(p.root, projCfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Project templates now at %s\n", version.TemplateVersion)
	return nil
}
