package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/claudemd"
	"github.com/modu-ai/moai-adk/internal/cli/wizard"
	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/scanner"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenerate CLAUDE.md from the project",
	Long: `Regenerate CLAUDE.md by rescanning the project.

This command re-analyzes your codebase and updates the block between the
moai:generated markers while preserving everything you wrote around it.

Requires an initialized project (run 'moai init' first).

Example:
  moai refresh
  moai refresh --non-interactive`,
	RunE: refreshClaudeMD,
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().Bool("non-interactive", false, "Regenerate without prompting")
	refreshCmd.Flags().Bool("force", false, "Regenerate without confirmation")
}

func refreshClaudeMD(cmd *cobra.Command, args []string) error {
	p, err := requireProject(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
	force, _ := cmd.Flags().GetBool("force")

	var hasCustomContent bool
	if existing, err := os.ReadFile(filepath.Join(p.root, config.ClaudeMD)); err == nil {
		hasCustomContent = claudemd.Split(string(existing)).HasCustomContent()
	}

	if hasCustomContent && !force && !nonInteractive && isInteractive(cmd.InOrStdin()) {
		confirmed, err := wizard.ConfirmRegeneration(hasCustomContent)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Refresh cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Scanning project...")
	profile, err := scanner.Scan(cmd.Context(), p.root, scanner.Options{Exclude: p.cfg.Tags.Exclude})
	if err != nil {
		return fmt.Errorf("failed to scan project: %w", err)
	}

	changed, err := writeClaudeMD(cmd, p, profile)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(out, "%s is up to date\n", config.ClaudeMD)
		return nil
	}
	fmt.Fprintf(out, "Updated %s\n", config.ClaudeMD)
	if hasCustomContent {
		fmt.Fprintln(out, "Custom sections have been preserved.")
	}
	return nil
}

// writeClaudeMD regenerates the generated block of CLAUDE.md.
func writeClaudeMD(cmd *cobra.Command, p *project, profile *scanner.Profile) (bool, error) {
	ix, err := p.openSkills(cmd.Context())
	if err != nil {
		return false, err
	}
	gen, err := claudemd.NewGenerator()
	if err != nil {
		return false, err
	}
	changed, err := gen.Write(p.root, claudemd.NewData(p.cfg, profile, ix.Skills()))
	if err != nil {
		return false, fmt.Errorf("failed to write %s: %w", config.ClaudeMD, err)
	}
	return changed, nil
}
