package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/gitinfo"
	"github.com/modu-ai/moai-adk/internal/statusline"
	"github.com/modu-ai/moai-adk/internal/updater"
	"github.com/modu-ai/moai-adk/internal/version"
)

var statuslineCmd = &cobra.Command{
	Use:   "statusline",
	Short: "Render the Claude Code status line",
	Long: `Render the Claude Code status line from the session JSON on stdin.

Output: 🗿 <model> | <version> | <branch> | <output style>

Example (.claude/settings.json):
  "statusLine": {"type": "command", "command": "moai statusline"}`,
	Args: cobra.NoArgs,
	RunE: renderStatusline,
}

func init() {
	rootCmd.AddCommand(statuslineCmd)
}

func renderStatusline(cmd *cobra.Command, args []string) error {
	in := statusline.ReadInput(cmd.InOrStdin())

	dir := in.Dir()
	if dir == "" {
		d, err := startDir()
		if err != nil {
			return err
		}
		dir = d
	}
	root := config.FindProjectRoot(dir)

	colored := !viper.GetBool("no_color")
	cfg, err := config.Load(root, config.LoadOptions{ExplicitFile: cfgFile})
	if err == nil {
		colored = colored && cfg.Statusline.Color
	}

	line := statusline.Build(in, version.Short(), gitinfo.Branch)
	if res := updater.NewChecker(nil, updater.CachePath(root)).Last(version.Short()); res != nil && res.UpdateAvailable {
		line.Update = res.Latest
	}
	fmt.Fprintln(cmd.OutOrStdout(), line.Render(colored))
	return nil
}
