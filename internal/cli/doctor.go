package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the project and environment",
	Long: `Check that required tools are on PATH, the project is initialized, the
configuration loads and validates, skills can be indexed and the cache
directory is writable. Host details are listed for bug reports.

Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().Bool("json", false, "Print the report as JSON")
	doctorCmd.Flags().Bool("no-host", false, "Skip host information")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	dir, err := startDir()
	if err != nil {
		return err
	}
	noHost, _ := cmd.Flags().GetBool("no-host")
	report := doctor.Run(cmd.Context(), doctor.Options{
		Root:       config.FindProjectRoot(dir),
		ConfigFile: cfgFile,
		SkipHost:   noHost,
	})

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		report.Render(out, colorEnabled(out))
	}
	if !report.OK() {
		return fmt.Errorf("doctor found %d failing check(s)", report.Counts()[doctor.StatusFail])
	}
	return nil
}
