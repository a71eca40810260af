package doctor

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var checkHeader = table.Row{"Check", "Status", "Detail"}

// Render writes the report as tables. colored adds status colors.
func (r *Report) Render(w io.Writer, colored bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(checkHeader)
	for _, c := range r.Checks {
		t.AppendRow(table.Row{c.Name, statusLabel(c.Status, colored), c.Detail})
	}
	t.Render()

	if r.Host.OS != "" {
		h := table.NewWriter()
		h.SetOutputMirror(w)
		h.SetStyle(table.StyleLight)
		h.AppendHeader(table.Row{"Host", ""})
		platform := r.Host.OS
		if r.Host.Platform != "" {
			platform = fmt.Sprintf("%s %s", r.Host.Platform, r.Host.PlatformVersion)
		}
		h.AppendRows([]table.Row{
			{"platform", platform},
			{"arch", r.Host.Arch},
			{"go", r.Host.GoVersion},
			{"cpus", r.Host.CPUs},
			{"memory", fmt.Sprintf("%s (%.0f%% used)", formatBytes(r.Host.MemoryTotal), r.Host.MemoryUsed)},
			{"disk free", formatBytes(r.Host.DiskFree)},
		})
		h.Render()
	}

	counts := r.Counts()
	fmt.Fprintf(w, "%d ok, %d warnings, %d failures\n", counts[StatusOK], counts[StatusWarn], counts[StatusFail])
}

func statusLabel(s Status, colored bool) string {
	if !colored {
		return string(s)
	}
	var c *color.Color
	switch s {
	case StatusOK:
		c = color.New(color.FgGreen)
	case StatusWarn:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed, color.Bold)
	}
	c.EnableColor()
	return c.Sprint(string(s))
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
