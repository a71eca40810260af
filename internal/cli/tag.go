package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/tag"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Scan and validate @SPEC/@TEST/@CODE/@DOC traceability tags",
	Long: `Tags link a SPEC to the tests, code and docs that implement it, e.g.

  // @SPEC:AUTH-001  in .moai/specs/SPEC-AUTH-001/spec.md
  // @TEST:AUTH-001  in the test
  // @CODE:AUTH-001  in the implementation

Files are selected by tags.include and tags.exclude in the project config.`,
}

var tagScanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "List every tag in the project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  scanTags,
}

var tagValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check that every tag chain is complete",
	Long: `Check TAG chains. CODE or TEST tags without a SPEC are orphans, a SPEC
without TEST or CODE is incomplete, and an ID defined by more than one SPEC tag
is a duplicate. Exits non-zero when any issue is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateTags,
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagScanCmd, tagValidateCmd)

	tagScanCmd.Flags().Bool("json", false, "Print tags as JSON")
	tagValidateCmd.Flags().Bool("json", false, "Print the report as JSON")
}

func collectTags(cmd *cobra.Command, args []string) ([]tag.Tag, error) {
	p, err := openProject(cmd)
	if err != nil {
		return nil, err
	}
	root := p.root
	if len(args) == 1 {
		if root, err = filepath.Abs(args[0]); err != nil {
			return nil, err
		}
	}
	s := tag.NewScanner(p.cfg.Tags.Include, p.cfg.Tags.Exclude, p.logger)
	tags, err := s.Scan(cmd.Context(), root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags: %w", err)
	}
	return tags, nil
}

func scanTags(cmd *cobra.Command, args []string) error {
	tags, err := collectTags(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, tags)
	}

	if len(tags) == 0 {
		fmt.Fprintln(out, "No tags found.")
		return nil
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Category", "Location"})
	for _, tg := range tags {
		t.AppendRow(table.Row{tg.ID, tg.Category, tg.Location()})
	}
	t.Render()
	fmt.Fprintf(out, "%d tags in %d chains\n", len(tags), len(tag.BuildChains(tags)))
	return nil
}

func validateTags(cmd *cobra.Command, args []string) error {
	tags, err := collectTags(cmd, args)
	if err != nil {
		return err
	}
	report := tag.Validate(tags)
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		printTagReport(out, report)
	}
	if !report.OK() {
		return fmt.Errorf("TAG validation found %d issue(s)", len(report.Issues()))
	}
	return nil
}

func printTagReport(w io.Writer, r tag.Report) {
	if issues := r.Issues(); len(issues) > 0 {
		t := newTable(w)
		t.AppendHeader(table.Row{"ID", "Issue", "Detail", "Locations"})
		for _, is := range issues {
			var locs []string
			for _, tg := range is.Tags {
				locs = append(locs, tg.Location())
			}
			t.AppendRow(table.Row{is.ID, is.Kind, is.Message, strings.Join(locs, "\n")})
		}
		t.Render()
	}
	fmt.Fprintf(w, "%d tags, %d chains, %d complete, %d orphan, %d incomplete, %d duplicate\n",
		r.Tags, r.Chains, r.Complete, len(r.Orphans), len(r.Incomplete), len(r.Duplicates))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
