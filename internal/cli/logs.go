package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/hooks"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recorded hook events",
	Long: `Show the hook events recorded in .moai/logs/hooks.jsonl. Secrets in the
recorded payloads are redacted when they are written.

Example:
  moai logs
  moai logs --event pre-tool-use --since 1h
  moai logs --session 3f2a --tail 20`,
	Args: cobra.NoArgs,
	RunE: getLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().Int("tail", 50, "Number of events to show from the end (0 for all)")
	logsCmd.Flags().String("since", "", "Show events since timestamp (e.g., 2024-01-01T00:00:00Z) or duration (e.g., 1h)")
	logsCmd.Flags().String("event", "", "Only show this event")
	logsCmd.Flags().String("session", "", "Only show events whose session ID starts with this prefix")
	logsCmd.Flags().Bool("blocked", false, "Only show blocked events")
}

// logFilter selects hook records.
type logFilter struct {
	event   hooks.Event
	session string
	since   time.Time
	blocked bool
	tail    int
}

func getLogs(cmd *cobra.Command, args []string) error {
	p, err := requireProject(cmd)
	if err != nil {
		return err
	}

	f, err := parseLogFilter(cmd, time.Now())
	if err != nil {
		return err
	}

	path := filepath.Join(p.root, filepath.FromSlash(config.LogsDir), hooks.LogFile)
	records, err := hooks.ReadRecords(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), "No hook events recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading logs: %w", err)
	}

	for _, rec := range f.apply(records) {
		formatRecord(cmd.OutOrStdout(), rec)
	}
	return nil
}

func parseLogFilter(cmd *cobra.Command, now time.Time) (logFilter, error) {
	var f logFilter
	f.tail, _ = cmd.Flags().GetInt("tail")
	f.session, _ = cmd.Flags().GetString("session")
	f.blocked, _ = cmd.Flags().GetBool("blocked")

	if name, _ := cmd.Flags().GetString("event"); name != "" {
		ev, err := hooks.ParseEvent(name)
		if err != nil {
			return f, err
		}
		f.event = ev
	}

	if sinceStr, _ := cmd.Flags().GetString("since"); sinceStr != "" {
		// Try parsing as duration first
		if dur, err := time.ParseDuration(sinceStr); err == nil {
			f.since = now.Add(-dur)
		} else {
			// Try parsing as timestamp
			f.since, err = time.Parse(time.RFC3339, sinceStr)
			if err != nil {
				return f, fmt.Errorf("invalid --since value: %s", sinceStr)
			}
		}
	}
	return f, nil
}

func (f logFilter) apply(records []hooks.Record) []hooks.Record {
	var out []hooks.Record
	for _, r := range records {
		if f.event != "" && r.Event != f.event {
			continue
		}
		if f.session != "" && !strings.HasPrefix(r.SessionID, f.session) {
			continue
		}
		if !f.since.IsZero() && r.Time.Before(f.since) {
			continue
		}
		if f.blocked && !r.Blocked {
			continue
		}
		out = append(out, r)
	}
	if f.tail > 0 && len(out) > f.tail {
		out = out[len(out)-f.tail:]
	}
	return out
}

// formatRecord prints one event line plus one indented line per failed handler.
func formatRecord(w io.Writer, r hooks.Record) {
	var b strings.Builder
	if !r.Time.IsZero() {
		fmt.Fprintf(&b, "[%s] ", r.Time.Local().Format("15:04:05"))
	}
	b.WriteString(string(r.Event))
	if r.SessionID != "" {
		session := r.SessionID
		if len(session) > 8 {
			session = session[:8]
		}
		fmt.Fprintf(&b, " session=%s", session)
	}
	if tool, ok := r.Payload["tool_name"].(string); ok && tool != "" {
		fmt.Fprintf(&b, " tool=%s", tool)
	}
	fmt.Fprintf(&b, " handlers=%d %s", len(r.Handlers), r.Duration.Round(time.Millisecond))
	switch {
	case r.Blocked:
		fmt.Fprintf(&b, " BLOCKED: %s", r.Reason)
	case !r.Continue:
		b.WriteString(" STOPPED")
	}
	fmt.Fprintln(w, b.String())

	for _, h := range r.Handlers {
		if h.Error == "" {
			continue
		}
		label := "error"
		if h.TimedOut {
			label = "timeout"
		}
		fmt.Fprintf(w, "    %s %s: %s\n", h.Name, label, h.Error)
	}
}
