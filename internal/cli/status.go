package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/cache"
	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/gitinfo"
	"github.com/modu-ai/moai-adk/internal/hooks"
	"github.com/modu-ai/moai-adk/internal/updater"
	"github.com/modu-ai/moai-adk/internal/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project status",
	Long: `Show the MoAI status of the current project: configuration, template
version, skills, SPECs, the persisted context cache and recent hook activity.

Examples:
  moai status
  moai status --json`,
	Args: cobra.NoArgs,
	RunE: checkStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json", false, "Print status as JSON")
}

// projectStatus is the data behind moai status.
type projectStatus struct {
	Name            string      `json:"name"`
	Mode            string      `json:"mode"`
	Root            string      `json:"root"`
	Version         string      `json:"version"`
	ProjectVersion  string      `json:"project_version,omitempty"`
	TemplateVersion string      `json:"template_version,omitempty"`
	Branch          string      `json:"branch,omitempty"`
	Skills          int         `json:"skills"`
	SkillsSource    string      `json:"skills_source"`
	Specs           []string    `json:"specs"`
	Cache           cache.Stats `json:"cache"`
	HookEvents      int         `json:"hook_events"`
	LastHook        time.Time   `json:"last_hook,omitempty"`
	UpdateAvailable string      `json:"update_available,omitempty"`
}

func checkStatus(cmd *cobra.Command, args []string) error {
	p, err := requireProject(cmd)
	if err != nil {
		return err
	}
	st, err := collectStatus(cmd, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, st)
	}

	t := newTable(out)
	t.SetTitle("MoAI-ADK " + st.Version)
	templates := st.TemplateVersion
	if templates != version.TemplateVersion {
		templates = fmt.Sprintf("%s (binary ships %s, run 'moai update --sync')", orDash(templates), version.TemplateVersion)
	}
	lastHook := "-"
	if !st.LastHook.IsZero() {
		lastHook = st.LastHook.Local().Format(time.DateTime)
	}
	t.AppendRows([]table.Row{
		{"Project", fmt.Sprintf("%s (%s mode)", st.Name, st.Mode)},
		{"Root", st.Root},
		{"Initialized with", orDash(st.ProjectVersion)},
		{"Templates", templates},
		{"Branch", orDash(st.Branch)},
		{"Skills", fmt.Sprintf("%d from %s", st.Skills, st.SkillsSource)},
		{"SPECs", specSummary(st.Specs)},
		{"Context cache", fmt.Sprintf("%d entries, %d bytes", st.Cache.Entries, st.Cache.Bytes)},
		{"Hook events", fmt.Sprintf("%d (last %s)", st.HookEvents, lastHook)},
	})
	if st.UpdateAvailable != "" {
		t.AppendRow(table.Row{"Update", st.UpdateAvailable + " available, run 'moai update'"})
	}
	t.Render()
	return nil
}

func collectStatus(cmd *cobra.Command, p *project) (*projectStatus, error) {
	st := &projectStatus{
		Name:            p.cfg.Project.Name,
		Mode:            p.cfg.Project.Mode,
		Root:            p.root,
		Version:         version.Short(),
		ProjectVersion:  p.cfg.MoAI.Version,
		TemplateVersion: p.cfg.MoAI.TemplateVersion,
	}
	if branch, err := gitinfo.Branch(p.root); err == nil {
		st.Branch = branch
	}

	ix, err := p.openSkills(cmd.Context())
	if err != nil {
		return nil, err
	}
	st.Skills = ix.Len()
	st.SkillsSource = ix.Root()

	specs, err := listSpecs(p.root)
	if err != nil {
		return nil, err
	}
	st.Specs = specs

	if p.cfg.Context.Persist {
		c := cache.New(cache.Config{MaxEntries: p.cfg.Context.MaxEntries, MaxBytes: p.cfg.Context.MaxBytes()})
		if err := c.Load(cache.SnapshotPath(p.root)); err != nil {
			p.logger.Debug("context cache snapshot unreadable", "error", err)
		}
		st.Cache = c.Stats()
	}

	if records, err := hooks.ReadRecords(filepath.Join(p.root, filepath.FromSlash(config.LogsDir), hooks.LogFile)); err == nil {
		st.HookEvents = len(records)
		if len(records) > 0 {
			st.LastHook = records[len(records)-1].Time
		}
	}

	if res := updater.NewChecker(nil, updater.CachePath(p.root)).Last(version.Short()); res != nil && res.UpdateAvailable {
		st.UpdateAvailable = res.Latest
	}
	return st, nil
}

// listSpecs returns the SPEC-* directory names under .moai/specs.
func listSpecs(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(config.SpecsDir)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list SPECs: %w", err)
	}
	var specs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "SPEC-") {
			specs = append(specs, e.Name())
		}
	}
	return specs, nil
}

func specSummary(specs []string) string {
	if len(specs) == 0 {
		return "none"
	}
	const shown = 5
	if len(specs) <= shown {
		return fmt.Sprintf("%d: %s", len(specs), strings.Join(specs, ", "))
	}
	return fmt.Sprintf("%d: %s, ...", len(specs), strings.Join(specs[:shown], ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
