package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modu-ai/moai-adk/internal/version"
)

var (
	cfgFile string
	workDir string
)

var rootCmd = &cobra.Command{
	Use:   "moai",
	Short: "MoAI-ADK - SPEC-first agentic development kit for Claude Code",
	Long: `MoAI-ADK sets up a project for SPEC-first, test-driven development with
Claude Code.

It installs project templates and skills, generates CLAUDE.md, answers Claude
Code hooks with phase-aware context, and keeps @SPEC/@TEST/@CODE/@DOC tags
traceable across the codebase.

Example:
  moai init
  moai context "write the failing test for login"
  moai tag validate`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "extra config file applied over .moai/config/config.json")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "project directory (default is the current directory)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
}
