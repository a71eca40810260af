package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/jit"
	"github.com/modu-ai/moai-adk/internal/phase"
)

var contextCmd = &cobra.Command{
	Use:   "context <text...>",
	Short: "Load the phase-appropriate skill context for a request",
	Long: `Detect the workflow phase of a request and print the skill bundle the JIT
loader would inject into Claude Code, trimmed to the phase's token budget.

Phases: ` + strings.Join(phase.Names(), ", ") + `

Example:
  moai context "write a failing test for the parser"
  moai context --phase GREEN --json "make it pass"`,
	Args: cobra.MinimumNArgs(1),
	RunE: loadContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)

	contextCmd.Flags().String("phase", "", "Skip detection and load this phase")
	contextCmd.Flags().Bool("json", false, "Print the bundle as JSON")
	contextCmd.Flags().Bool("stats", false, "Print loader statistics after the bundle")
}

func loadContext(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	input := strings.Join(args, " ")

	loader, _, err := jit.Open(ctx, p.root, p.cfg, p.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := loader.Close(); err != nil {
			p.logger.Warn("context cache not saved", "error", err)
		}
	}()

	var bundle *jit.Bundle
	if name, _ := cmd.Flags().GetString("phase"); name != "" {
		ph, perr := phase.Parse(name)
		if perr != nil {
			return perr
		}
		bundle, err = loader.LoadForPhase(ctx, ph, input)
	} else {
		bundle, err = loader.Load(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("failed to load context: %w", err)
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	withStats, _ := cmd.Flags().GetBool("stats")

	if asJSON {
		payload := map[string]any{"bundle": bundle}
		if withStats {
			payload["stats"] = loader.Stats()
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	printBundle(out, bundle)
	if withStats {
		printLoaderStats(out, loader.Stats())
	}
	return nil
}

func printBundle(w io.Writer, b *jit.Bundle) {
	source := "loaded"
	if b.CacheHit {
		source = "cache hit"
	}
	fmt.Fprintf(w, "Phase:  %s (%s, %s)\n", b.Phase, source, b.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "Skills: %s\n", strings.Join(b.Skills, ", "))
	if len(b.Excluded) > 0 {
		fmt.Fprintf(w, "Excluded over budget: %s\n", strings.Join(b.Excluded, ", "))
	}
	budget := "unlimited"
	if b.Budget > 0 {
		budget = fmt.Sprintf("%d", b.Budget)
	}
	fmt.Fprintf(w, "Tokens: %d / %s\n", b.Tokens, budget)
	if b.OverBudget {
		fmt.Fprintln(w, "Warning: phase budget exceeded")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, b.Content)
}

func printLoaderStats(w io.Writer, s jit.Stats) {
	t := newTable(w)
	t.SetTitle("Context cache")
	t.AppendHeader(table.Row{"Entries", "Bytes", "Hits", "Misses", "Evictions", "Hit rate"})
	t.AppendRow(table.Row{s.Cache.Entries, s.Cache.Bytes, s.Cache.Hits, s.Cache.Misses, s.Cache.Evictions, fmt.Sprintf("%.0f%%", s.Cache.HitRate*100)})
	t.Render()

	u := newTable(w)
	u.SetTitle("Token budgets")
	u.AppendHeader(table.Row{"Phase", "Used", "Budget", "Requests"})
	for _, ph := range phase.All() {
		usage, ok := s.Usage[ph]
		if !ok {
			continue
		}
		u.AppendRow(table.Row{ph, usage.Used, usage.Budget, usage.Requests})
	}
	u.Render()
	fmt.Fprintf(w, "Current phase: %s, efficiency %.0f%%, %d skills\n", s.CurrentPhase, s.Efficiency*100, s.Skills)
}
