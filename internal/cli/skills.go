package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/phase"
	"github.com/modu-ai/moai-adk/internal/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List, install and watch skills",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed skills",
	Long: `List the skills the JIT loader selects from. Project skills live under
skills.dir (default .claude/skills); the built-in set is used when none exist.

Example:
  moai skills list
  moai skills list --phase RED`,
	Args: cobra.NoArgs,
	RunE: listSkills,
}

var skillsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the built-in skills into the project",
	Args:  cobra.NoArgs,
	RunE:  installSkills,
}

var skillsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-index skills whenever a skill file changes",
	Args:  cobra.NoArgs,
	RunE:  watchSkills,
}

func init() {
	rootCmd.AddCommand(skillsCmd)
	skillsCmd.AddCommand(skillsListCmd, skillsInstallCmd, skillsWatchCmd)

	skillsListCmd.Flags().String("phase", "", "Only show skills selected for this phase, in selection order")
	skillsListCmd.Flags().Bool("json", false, "Print skills as JSON")
	skillsInstallCmd.Flags().Bool("force", false, "Overwrite skills that already exist")
}

func listSkills(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	ix, err := p.openSkills(cmd.Context())
	if err != nil {
		return err
	}

	list := ix.Skills()
	if name, _ := cmd.Flags().GetString("phase"); name != "" {
		ph, err := phase.Parse(name)
		if err != nil {
			return err
		}
		list = skills.NewSelector(list).Candidates(ph)
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No skills found.")
		return nil
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"Name", "Phases", "Priority", "Tokens", "Description"})
	total := 0
	for _, s := range list {
		t.AppendRow(table.Row{s.Name, skillPhases(s), s.Priority, s.Tokens, s.Description})
		total += s.Tokens
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d skills", len(list)), "", "", total, ix.Root()})
	t.Render()
	return nil
}

func skillPhases(s skills.SkillInfo) string {
	if s.Universal() {
		return "all"
	}
	var names []string
	for _, ph := range s.Phases {
		names = append(names, ph.String())
	}
	names = append(names, s.Categories...)
	return strings.Join(names, ", ")
}

func installSkills(cmd *cobra.Command, args []string) error {
	p, err := requireProject(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	installed, err := skills.InstallDefaults(p.root, force)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(installed) == 0 {
		fmt.Fprintln(out, "All built-in skills are already installed (use --force to overwrite).")
		return nil
	}
	for _, name := range installed {
		fmt.Fprintf(out, "installed %s\n", name)
	}
	return nil
}

func watchSkills(cmd *cobra.Command, args []string) error {
	p, err := requireProject(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	dir := p.skillsDir()
	ix, err := skills.OpenDir(ctx, dir, p.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (%d skills). Press Ctrl+C to stop.\n", dir, ix.Len())
	err = ix.Watch(ctx, dir, skills.DefaultDebounce, func(ix *skills.Index) {
		fmt.Fprintf(out, "re-indexed %d skills, ~%d tokens\n", ix.Len(), ix.TotalTokens())
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
